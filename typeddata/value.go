package typeddata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ValueKind is the discriminant of a Value, used when reporting mismatches.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindArray
	KindObject
	// KindNull is reported for a missing (nil) Value.
	KindNull
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a node of a message or domain tree. The set of implementations is
// closed: StringValue, NumberValue, BoolValue, ArrayValue and ObjectValue.
type Value interface {
	Kind() ValueKind
	isValue()
}

type StringValue string

func (StringValue) Kind() ValueKind { return KindString }
func (StringValue) isValue()        {}

// NumberValue is an integer literal. It may be negative or exceed the field;
// range checks happen against the declared type during encoding.
type NumberValue struct {
	n *big.Int
}

func NumberFromBig(n *big.Int) NumberValue {
	return NumberValue{n: new(big.Int).Set(n)}
}

func NumberFromInt(i int64) NumberValue {
	return NumberValue{n: big.NewInt(i)}
}

// Int returns a copy of the literal.
func (v NumberValue) Int() *big.Int {
	if v.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

func (NumberValue) Kind() ValueKind { return KindNumber }
func (NumberValue) isValue()        {}

type BoolValue bool

func (BoolValue) Kind() ValueKind { return KindBool }
func (BoolValue) isValue()        {}

// ArrayValue is an ordered list of nodes, such as enum slots or Merkle leaves.
type ArrayValue []Value

func (ArrayValue) Kind() ValueKind { return KindArray }
func (ArrayValue) isValue()        {}

// Entry is one key/value pair of an ObjectValue.
type Entry struct {
	Key   string
	Value Value
}

// ObjectValue maps unique field names to nodes and keeps the order in which
// they were supplied.
type ObjectValue struct {
	entries []Entry
	index   map[string]int
}

// NewObject builds an object, rejecting duplicate keys.
func NewObject(entries ...Entry) (ObjectValue, error) {
	obj := ObjectValue{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Value == nil {
			return ObjectValue{}, fmt.Errorf("object key %q has no value", e.Key)
		}
		if _, dup := obj.index[e.Key]; dup {
			return ObjectValue{}, fmt.Errorf("duplicate object key %q", e.Key)
		}
		obj.index[e.Key] = len(obj.entries)
		obj.entries = append(obj.entries, e)
	}
	return obj, nil
}

// MustObject is NewObject for literals; it panics on duplicate keys.
func MustObject(entries ...Entry) ObjectValue {
	obj, err := NewObject(entries...)
	if err != nil {
		panic(err)
	}
	return obj
}

func (ObjectValue) Kind() ValueKind { return KindObject }
func (ObjectValue) isValue()        {}

func (o ObjectValue) Len() int {
	return len(o.entries)
}

func (o ObjectValue) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.entries[i].Value, true
}

// Entries returns the entries in supplied order.
func (o ObjectValue) Entries() []Entry {
	out := make([]Entry, len(o.entries))
	copy(out, o.entries)
	return out
}

// ParseValue decodes a JSON document into a value tree. Numbers are kept as
// exact integers; fractional or exponent literals are rejected.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			arr := ArrayValue{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			var entries []Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				entries = append(entries, Entry{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewObject(entries...)
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return StringValue(t), nil
	case json.Number:
		n, ok := new(big.Int).SetString(t.String(), 10)
		if !ok {
			return nil, &InvalidNumberError{Value: t.String()}
		}
		return NumberValue{n: n}, nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return nil, errors.New("null is not a valid typed data value")
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
