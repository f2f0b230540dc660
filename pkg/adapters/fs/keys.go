package fs

import (
	"fmt"
	"net/url"
	"strings"
)

// Extension is appended to every key file.
const Extension = ".kv"

// EncodeKey maps a key to a file name. Bytes outside [A-Za-z0-9@_.-] are
// percent-encoded, as is a leading dot, so any key yields a single visible
// file in the data directory.
func EncodeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if safeByte(c) && !(i == 0 && c == '.') {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	b.WriteString(Extension)
	return b.String()
}

// DecodeKey reverses EncodeKey. ok is false for names EncodeKey cannot have
// produced (temp files, foreign files).
func DecodeKey(name string) (key string, ok bool) {
	stem, found := strings.CutSuffix(name, Extension)
	if !found || stem == "" {
		return "", false
	}
	key, err := url.PathUnescape(stem)
	if err != nil || EncodeKey(key) != name {
		return "", false
	}
	return key, true
}

func safeByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '@' || c == '_' || c == '.' || c == '-':
		return true
	}
	return false
}
