package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Account data encodings.
const (
	EncodingBase58 = "base58"
	EncodingBase64 = "base64"
)

// EncodedData is binary data carried as a [payload, encoding] JSON pair.
// A bare JSON string is read as base64.
type EncodedData struct {
	Bytes    []byte
	Encoding string
}

// MarshalJSON renders the pair.
func (d EncodedData) MarshalJSON() ([]byte, error) {
	enc := d.Encoding
	if enc == "" {
		enc = EncodingBase58
	}
	payload, err := encodeBytes(d.Bytes, enc)
	if err != nil {
		return nil, err
	}
	return json.Marshal([2]string{payload, enc})
}

// UnmarshalJSON accepts a pair or a bare base64 string.
func (d *EncodedData) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("data must be [payload, encoding]")
		}
		raw, err := decodeBytes(pair[0], pair[1])
		if err != nil {
			return err
		}
		d.Bytes, d.Encoding = raw, pair[1]
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("data must be a string or [payload, encoding]")
	}
	raw, err := decodeBytes(s, EncodingBase64)
	if err != nil {
		return err
	}
	d.Bytes, d.Encoding = raw, EncodingBase64
	return nil
}

func encodeBytes(b []byte, enc string) (string, error) {
	switch enc {
	case EncodingBase58:
		return base58.Encode(b), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

func decodeBytes(s, enc string) ([]byte, error) {
	switch enc {
	case EncodingBase58:
		if s == "" {
			return []byte{}, nil
		}
		return base58.Decode(s)
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(s)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}
