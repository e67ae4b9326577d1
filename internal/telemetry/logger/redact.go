package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key fragments that mark an attribute as secret.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"private",
	"keypair",
	"credential",
	"authorization",
	"bearer",
	"api_key",
	"apikey",
}

// Query parameters that RPC providers use to carry credentials.
var sensitiveQueryParams = []string{
	"api-key",
	"api_key",
	"apikey",
	"token",
	"access_token",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive rewrites an attribute before it is written.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// URL masking keeps the host visible, so it wins over key-based redaction.
		if masked, ok := maskURL(strVal); ok {
			return slog.String(a.Key, masked)
		}

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskURL hides credential query parameters and userinfo passwords.
// ok is false when s is not a URL carrying credentials.
func maskURL(s string) (string, bool) {
	if !strings.Contains(s, "://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s, false
	}

	changed := false
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
		changed = true
	}

	q := u.Query()
	for _, p := range sensitiveQueryParams {
		for key := range q {
			if strings.EqualFold(key, p) && q.Get(key) != "" {
				q.Set(key, "***")
				changed = true
			}
		}
	}
	if !changed {
		return s, false
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// RedactString masks credentials in a value before it is logged or printed.
func RedactString(value string) string {
	if masked, ok := maskURL(value); ok {
		return masked
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value is a URL carrying credentials.
func IsSensitiveValue(value string) bool {
	_, ok := maskURL(value)
	return ok
}
