package typeddata

import (
	"math/big"

	"github.com/nando-os/ghost-stark/felt"
)

var (
	maxU128 = new(big.Int).Lsh(big.NewInt(1), 128)
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Lsh(big.NewInt(1), 127)
)

// Encode returns the canonical element sequence of value under typeName: the
// per-field encodings for a struct, or the variant index followed by the slot
// encodings for an enum.
func (r *Registry) Encode(typeName string, value Value) ([]*felt.Felt, error) {
	def, err := r.lookup(typeName)
	if err != nil {
		return nil, err
	}
	if def.Kind == EnumType {
		return r.encodeEnum(def, value)
	}
	return r.encodeStruct(def, value)
}

func (r *Registry) encodeStruct(def *Definition, value Value) ([]*felt.Felt, error) {
	obj, ok := value.(ObjectValue)
	if !ok {
		return nil, unexpectedKind(value, KindObject)
	}
	if obj.Len() != len(def.Fields) {
		return nil, &StructFieldCountMismatchError{Expected: len(def.Fields), Actual: obj.Len()}
	}

	out := make([]*felt.Felt, 0, len(def.Fields))
	for _, f := range def.Fields {
		v, ok := obj.Get(f.Name)
		if !ok {
			return nil, &FieldNotFoundError{Name: f.Name}
		}
		enc, err := r.encodeRef(f.ref, v)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func (r *Registry) encodeEnum(def *Definition, value Value) ([]*felt.Felt, error) {
	obj, ok := value.(ObjectValue)
	if !ok {
		return nil, unexpectedKind(value, KindObject)
	}
	if obj.Len() != 1 {
		return nil, ErrInvalidEnumFieldCount
	}

	entry := obj.Entries()[0]
	index, variant, ok := def.variant(entry.Key)
	if !ok {
		return nil, &EnumVariantNotFoundError{Name: entry.Key}
	}
	slots, ok := entry.Value.(ArrayValue)
	if !ok {
		return nil, unexpectedKind(entry.Value, KindArray)
	}
	if len(slots) != len(variant.refs) {
		return nil, &EnumElementCountMismatchError{Expected: len(variant.refs), Actual: len(slots)}
	}

	out := make([]*felt.Felt, 0, len(slots)+1)
	out = append(out, felt.FromUint64(uint64(index)))
	for i, ref := range variant.refs {
		enc, err := r.encodeRef(ref, slots[i])
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// encodeRef reduces one value to the single element it contributes to its
// parent's chain.
func (r *Registry) encodeRef(ref typeRef, value Value) (*felt.Felt, error) {
	switch ref.kind {
	case refPrimitive:
		return r.encodePrimitive(ref.name, value)
	case refCustom:
		return r.StructHash(ref.name, value)
	case refEnum:
		def, err := r.enumDef(ref.name)
		if err != nil {
			return nil, err
		}
		elems, err := r.encodeEnum(def, value)
		if err != nil {
			return nil, err
		}
		return r.revision.HashArray(elems...), nil
	case refArray:
		arr, ok := value.(ArrayValue)
		if !ok {
			return nil, unexpectedKind(value, KindArray)
		}
		elems, err := r.encodeElements(*ref.elem, arr)
		if err != nil {
			return nil, err
		}
		return r.revision.HashArray(elems...), nil
	case refMerkleTree:
		arr, ok := value.(ArrayValue)
		if !ok {
			return nil, unexpectedKind(value, KindArray)
		}
		if len(arr) == 0 {
			return nil, ErrEmptyMerkleTree
		}
		leaves, err := r.encodeElements(*ref.elem, arr)
		if err != nil {
			return nil, err
		}
		return r.revision.MerkleRoot(leaves)
	}
	return nil, &InvalidTypeNameError{Name: ref.name}
}

func (r *Registry) encodeElements(ref typeRef, arr ArrayValue) ([]*felt.Felt, error) {
	out := make([]*felt.Felt, 0, len(arr))
	for _, item := range arr {
		enc, err := r.encodeRef(ref, item)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func (r *Registry) encodePrimitive(typ string, value Value) (*felt.Felt, error) {
	switch typ {
	case "felt", "shortstring":
		return encodeFeltOrShortString(value)
	case "string":
		if r.revision == RevisionActive {
			s, ok := value.(StringValue)
			if !ok {
				return nil, unexpectedKind(value, KindString)
			}
			return byteArrayHash(string(s)), nil
		}
		return encodeFeltOrShortString(value)
	case "ContractAddress", "ClassHash":
		n, err := integerLiteral(value)
		if err != nil {
			return nil, err
		}
		return toFelt(n)
	case "bool":
		return encodeBool(value)
	case "u128", "timestamp":
		n, err := integerLiteral(value)
		if err != nil {
			return nil, err
		}
		if n.Sign() < 0 || n.Cmp(maxU128) >= 0 {
			return nil, &InvalidNumberError{Value: n.String()}
		}
		return toFelt(n)
	case "i128":
		n, err := integerLiteral(value)
		if err != nil {
			return nil, err
		}
		if n.Cmp(minI128) < 0 || n.Cmp(maxI128) >= 0 {
			return nil, &InvalidNumberError{Value: n.String()}
		}
		if n.Sign() < 0 {
			n.Add(n, felt.Prime)
		}
		return toFelt(n)
	case "selector":
		return encodeSelector(value)
	}
	return nil, &InvalidTypeNameError{Name: typ}
}

// encodeFeltOrShortString accepts a number, a numeric string, or any other
// string as a Cairo short string.
func encodeFeltOrShortString(value Value) (*felt.Felt, error) {
	switch v := value.(type) {
	case NumberValue:
		return toFelt(v.Int())
	case StringValue:
		s := string(v)
		if isNumeric(s) {
			f, err := felt.FromString(s)
			if err != nil {
				return nil, &InvalidNumberError{Value: s}
			}
			return f, nil
		}
		f, err := felt.EncodeShortString(s)
		if err != nil {
			return nil, &InvalidShortStringError{Value: s}
		}
		return f, nil
	}
	return nil, unexpectedKind(value, KindNumber, KindString)
}

func encodeBool(value Value) (*felt.Felt, error) {
	var b bool
	switch v := value.(type) {
	case BoolValue:
		b = bool(v)
	case NumberValue:
		switch v.Int().String() {
		case "0":
		case "1":
			b = true
		default:
			return nil, &InvalidNumberError{Value: v.Int().String()}
		}
	case StringValue:
		switch v {
		case "false", "0":
		case "true", "1":
			b = true
		default:
			return nil, &InvalidNumberError{Value: string(v)}
		}
	default:
		return nil, unexpectedKind(value, KindBool, KindNumber, KindString)
	}
	if b {
		return felt.FromUint64(1), nil
	}
	return felt.FromUint64(0), nil
}

func encodeSelector(value Value) (*felt.Felt, error) {
	v, ok := value.(StringValue)
	if !ok {
		return nil, unexpectedKind(value, KindString)
	}
	s := string(v)
	if s == "" {
		return nil, &InvalidSelectorError{Value: s}
	}
	if felt.IsHex(s) {
		f, err := felt.FromHex(s)
		if err != nil {
			return nil, &InvalidSelectorError{Value: s}
		}
		return f, nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, &InvalidSelectorError{Value: s}
		}
	}
	return felt.Selector(s), nil
}

// integerLiteral reads a number or a numeric string (hex, or signed decimal).
func integerLiteral(value Value) (*big.Int, error) {
	switch v := value.(type) {
	case NumberValue:
		return v.Int(), nil
	case StringValue:
		s := string(v)
		if felt.IsHex(s) {
			if len(s) > 2 && s[2] != '-' && s[2] != '+' {
				if n, ok := new(big.Int).SetString(s[2:], 16); ok {
					return n, nil
				}
			}
		} else if isNumeric(s) || (len(s) > 1 && s[0] == '-' && isNumeric(s[1:])) {
			if n, ok := new(big.Int).SetString(s, 10); ok {
				return n, nil
			}
		}
		return nil, &InvalidNumberError{Value: s}
	}
	return nil, unexpectedKind(value, KindNumber, KindString)
}

func toFelt(n *big.Int) (*felt.Felt, error) {
	f, err := felt.FromBigInt(n)
	if err != nil {
		return nil, &InvalidNumberError{Value: n.String()}
	}
	return f, nil
}

// isNumeric reports whether s is a hex literal or an unsigned decimal.
func isNumeric(s string) bool {
	if felt.IsHex(s) {
		return true
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// byteArrayHash hashes the Cairo ByteArray serialisation of s:
// [full word count, 31-byte words..., pending word, pending word length].
func byteArrayHash(s string) *felt.Felt {
	data := []byte(s)
	full := len(data) / felt.MaxShortStringLength

	elems := make([]*felt.Felt, 0, full+3)
	elems = append(elems, felt.FromUint64(uint64(full)))
	for i := 0; i < full; i++ {
		word := data[i*felt.MaxShortStringLength : (i+1)*felt.MaxShortStringLength]
		elems = append(elems, new(felt.Felt).SetBytes(word))
	}
	pending := data[full*felt.MaxShortStringLength:]
	elems = append(elems,
		new(felt.Felt).SetBytes(pending),
		felt.FromUint64(uint64(len(pending))),
	)
	return RevisionActive.HashArray(elems...)
}
