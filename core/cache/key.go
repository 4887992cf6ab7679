// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/jobloop/querycache/utils/errors"
)

// keySeparator cannot appear in canonical JSON output, so operation names containing it are rejected.
const keySeparator = "\x00"

// maxExactFloatInt is 2^53, the largest magnitude below which float64 represents every integer.
const maxExactFloatInt = 1 << 53

// QueryKey identifies one cached query result: an operation name plus its normalized arguments.
//
// Arguments are normalized by encoding them to JSON, decoding into plain data and encoding again.
// encoding/json writes object keys in sorted order, so key order never affects equality, while
// array order does. Numbers compare by value within float64's exact integer range, so 7 and 7.0
// are the same argument, while larger integers compare by their exact digits. Strings holding
// invalid UTF-8 and cyclic argument structures are rejected.
//
// QueryKey is comparable with ==; two keys are equal iff their operations match and their
// normalized arguments are deep-equal.
type QueryKey struct {
	operation string
	canonical string
	hash      uint64
}

// NewQueryKey builds a key from an operation name and any JSON-serializable argument value.
func NewQueryKey(operation string, args any) (QueryKey, error) {
	if operation == "" {
		return QueryKey{}, errors.InvalidInputError("query key requires an operation name")
	}
	for i := 0; i < len(operation); i++ {
		if operation[i] == keySeparator[0] {
			return QueryKey{}, errors.InvalidInputError("operation name %q contains a NUL byte", operation)
		}
	}

	plain, canonical, err := canonicalize(args)
	if err != nil {
		return QueryKey{}, errors.InvalidInputError("arguments for %s cannot be normalized; %v", operation, err)
	}

	hash, err := hashstructure.Hash(struct {
		Operation string
		Args      any
	}{operation, plain}, hashstructure.FormatV2, nil)
	if err != nil {
		return QueryKey{}, errors.InvalidInputError("arguments for %s cannot be hashed; %v", operation, err)
	}

	return QueryKey{operation: operation, canonical: canonical, hash: hash}, nil
}

// MustQueryKey is NewQueryKey for arguments known to be valid; it panics otherwise.
func MustQueryKey(operation string, args any) QueryKey {
	key, err := NewQueryKey(operation, args)
	if err != nil {
		panic(err)
	}
	return key
}

// canonicalize returns the plain-data form of args and its canonical JSON encoding. Numbers are
// kept as json.Number so integers beyond float64 precision stay distinct.
func canonicalize(args any) (any, string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, "", err
	}
	if lossyUTF8(raw) {
		return nil, "", errors.New("arguments contain invalid UTF-8")
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var plain any
	if err := decoder.Decode(&plain); err != nil {
		return nil, "", err
	}
	plain = normalizeNumbers(plain)

	canonical, err := json.Marshal(plain)
	if err != nil {
		return nil, "", err
	}
	return plain, string(canonical), nil
}

// lossyUTF8 reports whether encoding/json substituted U+FFFD for invalid UTF-8 in raw. The
// encoder writes a genuine U+FFFD rune unescaped, so the \ufffd escape only appears for bytes it
// had to replace.
func lossyUTF8(raw []byte) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		if bytes.HasPrefix(raw[i+1:], []byte("ufffd")) {
			return true
		}
		i++
	}
	return false
}

// normalizeNumbers rewrites every json.Number in v to a single spelling per value: integral
// numbers within float64's exact range lose their fraction or exponent (1.0 and 1e0 become 1),
// integer literals keep their digits, and other numbers use encoding/json's float64 form.
func normalizeNumbers(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for k, item := range value {
			value[k] = normalizeNumbers(item)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = normalizeNumbers(item)
		}
		return value
	case json.Number:
		return normalizeNumber(value)
	default:
		return v
	}
}

func normalizeNumber(n json.Number) json.Number {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		if text == "-0" {
			return "0"
		}
		return n
	}
	f, err := n.Float64()
	if err != nil {
		return n
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactFloatInt {
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	encoded, err := json.Marshal(f)
	if err != nil {
		return n
	}
	return json.Number(encoded)
}

func (k QueryKey) Operation() string {
	return k.operation
}

// Args returns a fresh plain-data copy of the normalized arguments. Numbers decode as float64.
func (k QueryKey) Args() any {
	if k.canonical == "" {
		return nil
	}
	var plain any
	// The canonical form was produced by encoding/json, so decoding it cannot fail.
	_ = json.Unmarshal([]byte(k.canonical), &plain)
	return plain
}

// CanonicalArgs returns the canonical JSON encoding of the arguments.
func (k QueryKey) CanonicalArgs() string {
	return k.canonical
}

// ID returns a stable string identity; equal keys have equal IDs across processes.
func (k QueryKey) ID() string {
	return k.operation + keySeparator + k.canonical
}

// Hash returns a structural fingerprint of the key. Equal keys have equal hashes; the reverse
// does not hold.
func (k QueryKey) Hash() uint64 {
	return k.hash
}

func (k QueryKey) Equal(other QueryKey) bool {
	return k.operation == other.operation && k.canonical == other.canonical
}

func (k QueryKey) IsZero() bool {
	return k.operation == ""
}

func (k QueryKey) String() string {
	return fmt.Sprintf("%s(%s)", k.operation, k.canonical)
}
