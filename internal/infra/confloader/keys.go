package confloader

import (
	"reflect"
	"sort"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// KeysOf returns the dotted koanf keys of every leaf field in v, a struct
// or pointer to struct. Untagged fields are skipped.
func KeysOf(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	collectKeys(t, "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, out *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		ft := f.Type
		if ft.Kind() == reflect.Struct && ft != durationType {
			collectKeys(ft, key, out)
			continue
		}
		*out = append(*out, key)
	}
}
