// Package bencode encodes the four bencode value kinds used by torrent
// metainfo files: byte strings, integers, lists and dictionaries.
package bencode

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnsupportedType is returned for Go values with no bencode representation.
// Booleans, floats and structs must be converted by the caller.
var ErrUnsupportedType = errors.New("bencode: unsupported type")

// Encode returns the bencoded form of v.
//
// Supported values: string and []byte (byte string), int and int64
// (integer), []any (list) and map[string]any (dictionary). Dictionary keys
// are emitted in ascending raw byte order, so equal inputs always produce
// identical output.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case int:
		encodeInt(buf, int64(t))
	case int64:
		encodeInt(buf, t)
	case string:
		encodeString(buf, []byte(t))
	case []byte:
		encodeString(buf, t)
	case []any:
		return encodeList(buf, t)
	case map[string]any:
		return encodeDict(buf, t)
	default:
		return fmt.Errorf("%w %T", ErrUnsupportedType, v)
	}
	return nil
}

func encodeInt(buf *bytes.Buffer, n int64) {
	buf.WriteByte('i')
	buf.Write(strconv.AppendInt(nil, n, 10))
	buf.WriteByte('e')
}

func encodeString(buf *bytes.Buffer, b []byte) {
	buf.Write(strconv.AppendInt(nil, int64(len(b)), 10))
	buf.WriteByte(':')
	buf.Write(b)
}

func encodeList(buf *bytes.Buffer, list []any) error {
	buf.WriteByte('l')
	for _, v := range list {
		if err := encodeValue(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte('e')
	return nil
}

func encodeDict(buf *bytes.Buffer, m map[string]any) error {
	buf.WriteByte('d')
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Go string comparison is bytewise, which is the order bencode requires.
	sort.Strings(keys)
	for _, k := range keys {
		encodeString(buf, []byte(k))
		if err := encodeValue(buf, m[k]); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	buf.WriteByte('e')
	return nil
}
