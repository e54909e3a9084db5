package codec

import "fmt"

// Kind identifies an element type stored in a table. The set is closed:
// fixed-width numeric kinds plus Bytes for variable-length elements.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bytes
)

var kindNames = map[Kind]string{
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Bytes:   "bytes",
}

var kindWidths = map[Kind]int{
	Bool:    1,
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Uint8:   1,
	Uint16:  2,
	Uint32:  4,
	Uint64:  8,
	Float32: 4,
	Float64: 8,
	Bytes:   0,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width returns the encoded size of one element in bytes, or 0 for
// variable-length kinds.
func (k Kind) Width() int {
	return kindWidths[k]
}

// Fixed reports whether every element of this kind encodes to the same
// number of bytes.
func (k Kind) Fixed() bool {
	return k != Bytes && k != Invalid
}

// ParseKind maps a kind name (as used in config files and CLI flags) to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Invalid, fmt.Errorf("unknown element kind %q", s)
}

// Element is the closed set of Go types a table can store. Bytes elements are
// represented as Go strings so rows can share backing storage safely.
type Element interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64 | string
}

// KindOf returns the Kind corresponding to the element type T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case string:
		return Bytes
	}
	return Invalid
}
