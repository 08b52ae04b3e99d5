package typeddata

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/ghost-stark/felt"
)

func TestStructHash_MinimalStruct(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Person": {{Name: "name", Type: "felt"}},
	}, RevisionActive)

	h1, err := reg.StructHash("Person", obj("name", num(42)))
	require.NoError(t, err)
	h2, err := reg.StructHash("Person", obj("name", num(42)))
	require.NoError(t, err)

	assert.NotEqual(t, "0x0", hexOf(h1))
	assert.Equal(t, hexOf(h1), hexOf(h2))

	expected := RevisionActive.HashArray(mustTypeHash(t, reg, "Person"), felt.FromUint64(42))
	assert.Equal(t, hexOf(expected), hexOf(h1))
}

func TestStructHash_NestedStructChainsSubHashes(t *testing.T) {
	reg := mustRegistry(t, mailTypes, RevisionLegacy)
	from := obj("name", str("Cow"), "wallet", str("0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826"))
	to := obj("name", str("Bob"), "wallet", str("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"))
	mail := obj("from", from, "to", to, "contents", str("Hello, Bob!"))

	got, err := reg.StructHash("Mail", mail)
	require.NoError(t, err)

	fromHash, err := reg.StructHash("Person", from)
	require.NoError(t, err)
	toHash, err := reg.StructHash("Person", to)
	require.NoError(t, err)
	contents, err := felt.EncodeShortString("Hello, Bob!")
	require.NoError(t, err)

	expected := RevisionLegacy.HashArray(mustTypeHash(t, reg, "Mail"), fromHash, toHash, contents)
	assert.Equal(t, hexOf(expected), hexOf(got))
}

func TestStructHash_FieldNotFound(t *testing.T) {
	reg := mustRegistry(t, mailTypes, RevisionActive)
	person := obj("name", str("Bob"), "wallet", num(1))

	_, err := reg.StructHash("Mail", obj("sender", person, "to", person, "contents", num(1)))
	var target *FieldNotFoundError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "from", target.Name)
}

func TestStructHash_FieldCountMismatch(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Pair": {{Name: "a", Type: "felt"}, {Name: "b", Type: "felt"}},
	}, RevisionActive)

	values := []ObjectValue{
		obj(),
		obj("a", num(1)),
		obj("a", num(1), "b", num(2), "c", num(3)),
		obj("x", num(1), "y", num(2), "z", num(3), "w", num(4)),
	}
	for _, v := range values {
		_, err := reg.StructHash("Pair", v)
		var target *StructFieldCountMismatchError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 2, target.Expected)
		assert.Equal(t, v.Len(), target.Actual)
	}
}

func TestStructHash_MissingFieldReportsCountFirst(t *testing.T) {
	reg := mustRegistry(t, mailTypes, RevisionActive)
	person := obj("name", str("Bob"), "wallet", num(1))

	_, err := reg.StructHash("Mail", obj("to", person, "contents", num(1)))
	var target *StructFieldCountMismatchError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 3, target.Expected)
	assert.Equal(t, 2, target.Actual)
}

func TestStructHash_UnexpectedValueType(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Person": {{Name: "name", Type: "felt"}},
	}, RevisionActive)

	_, err := reg.StructHash("Person", obj("name", ArrayValue{}))
	var target *UnexpectedValueTypeError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []ValueKind{KindNumber, KindString}, target.Expected)
	assert.Equal(t, KindArray, target.Actual)

	_, err = reg.StructHash("Person", str("not an object"))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []ValueKind{KindObject}, target.Expected)
}

func TestStructHash_NilValues(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"P":      {{Name: "xs", Type: "felt*"}},
		"Node":   {{Name: "children", Type: "Node*"}},
		"Tree":   {{Name: "leaves", Type: "merkletree", Contains: "felt"}},
		"Holder": {{Name: "mode", Type: "enum", Contains: "Mode"}},
		"Mode": {
			{Name: "On", Type: "(u128)"},
			{Name: "Off", Type: "()"},
		},
	}, RevisionActive)

	var target *UnexpectedValueTypeError

	_, err := reg.StructHash("P", obj("xs", ArrayValue{nil}))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)
	assert.Equal(t, []ValueKind{KindNumber, KindString}, target.Expected)

	_, err = reg.StructHash("Node", obj("children", ArrayValue{nil}))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)
	assert.Equal(t, []ValueKind{KindObject}, target.Expected)

	_, err = reg.StructHash("Tree", obj("leaves", ArrayValue{num(1), nil}))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)

	_, err = reg.StructHash("Holder", obj("mode", obj("On", ArrayValue{nil})))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)

	_, err = reg.StructHash("P", nil)
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)

	_, err = reg.Encode("Mode", nil)
	require.ErrorAs(t, err, &target)
	assert.Equal(t, KindNull, target.Actual)
	assert.Equal(t, "unexpected value type null, expecting object", target.Error())
}

func TestStructHash_RevisionIsolation(t *testing.T) {
	types := map[string][]FieldDef{
		"Person": {{Name: "name", Type: "felt"}, {Name: "age", Type: "felt"}},
	}
	value := obj("name", str("alice"), "age", num(30))

	legacy, err := mustRegistry(t, types, RevisionLegacy).StructHash("Person", value)
	require.NoError(t, err)
	active, err := mustRegistry(t, types, RevisionActive).StructHash("Person", value)
	require.NoError(t, err)

	assert.NotEqual(t, hexOf(legacy), hexOf(active))
}

func TestStructHash_RecursiveValue(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Node": {{Name: "value", Type: "felt"}, {Name: "children", Type: "Node*"}},
	}, RevisionActive)

	leaf := obj("value", num(2), "children", ArrayValue{})
	root := obj("value", num(1), "children", ArrayValue{leaf, leaf})

	got, err := reg.StructHash("Node", root)
	require.NoError(t, err)

	leafHash, err := reg.StructHash("Node", leaf)
	require.NoError(t, err)
	typeHash := mustTypeHash(t, reg, "Node")
	expected := RevisionActive.HashArray(typeHash, felt.FromUint64(1), RevisionActive.HashArray(leafHash, leafHash))
	assert.Equal(t, hexOf(expected), hexOf(got))
}

var voteTypes = map[string][]FieldDef{
	"Ballot": {{Name: "vote", Type: "enum", Contains: "Vote"}},
	"Vote":   {{Name: "Yes", Type: "()"}, {Name: "No", Type: "()"}},
}

func TestEncode_Enum(t *testing.T) {
	reg := mustRegistry(t, voteTypes, RevisionActive)

	encoded, err := reg.Encode("Vote", obj("Yes", ArrayValue{}))
	require.NoError(t, err)
	require.Len(t, encoded, 1)
	assert.Equal(t, "0x0", hexOf(encoded[0]))

	encoded, err = reg.Encode("Vote", obj("No", ArrayValue{}))
	require.NoError(t, err)
	assert.Equal(t, "0x1", hexOf(encoded[0]))

	_, err = reg.Encode("Vote", obj("Maybe", ArrayValue{}))
	var target *EnumVariantNotFoundError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "Maybe", target.Name)
}

func TestEncode_EnumFieldCount(t *testing.T) {
	reg := mustRegistry(t, voteTypes, RevisionActive)

	_, err := reg.Encode("Vote", obj())
	assert.ErrorIs(t, err, ErrInvalidEnumFieldCount)

	_, err = reg.Encode("Vote", obj("Yes", ArrayValue{}, "No", ArrayValue{}))
	assert.ErrorIs(t, err, ErrInvalidEnumFieldCount)
}

func TestStructHash_EnumField(t *testing.T) {
	types := map[string][]FieldDef{
		"Example": {{Name: "someEnum", Type: "enum", Contains: "MyEnum"}},
		"MyEnum": {
			{Name: "Variant 1", Type: "()"},
			{Name: "Variant 2", Type: "(u128,u128*)"},
			{Name: "Variant 3", Type: "(u128)"},
		},
	}
	reg := mustRegistry(t, types, RevisionActive)

	got, err := reg.StructHash("Example", obj("someEnum", obj("Variant 3", ArrayValue{num(5)})))
	require.NoError(t, err)
	enumHash := RevisionActive.HashArray(felt.FromUint64(2), felt.FromUint64(5))
	expected := RevisionActive.HashArray(mustTypeHash(t, reg, "Example"), enumHash)
	assert.Equal(t, hexOf(expected), hexOf(got))

	_, err = reg.StructHash("Example", obj("someEnum", obj("Variant 2", ArrayValue{num(5)})))
	var mismatch *EnumElementCountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Actual)

	_, err = reg.StructHash("Example", obj("someEnum", obj("Variant 2", ArrayValue{num(5), ArrayValue{num(1), num(2)}})))
	assert.NoError(t, err)

	_, err = reg.StructHash("Example", obj("someEnum", obj("Variant 3", num(5))))
	var kind *UnexpectedValueTypeError
	require.ErrorAs(t, err, &kind)
	assert.Equal(t, []ValueKind{KindArray}, kind.Expected)
}

func TestEncodePrimitive_Numbers(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"N": {
			{Name: "u", Type: "u128"},
			{Name: "i", Type: "i128"},
			{Name: "ts", Type: "timestamp"},
			{Name: "addr", Type: "ContractAddress"},
		},
	}, RevisionActive)

	encoded, err := reg.Encode("N", obj("u", str("0xff"), "i", num(-1), "ts", num(1700000000), "addr", str("0x1234")))
	require.NoError(t, err)
	assert.Equal(t, "0xff", hexOf(encoded[0]))
	minusOne := new(big.Int).Sub(felt.Prime, big.NewInt(1))
	assert.Equal(t, 0, felt.ToBigInt(encoded[1]).Cmp(minusOne))
	assert.Equal(t, "0x1234", hexOf(encoded[3]))

	twoTo128 := new(big.Int).Lsh(big.NewInt(1), 128)
	twoTo127 := new(big.Int).Lsh(big.NewInt(1), 127)
	bad := []ObjectValue{
		obj("u", NumberFromBig(twoTo128), "i", num(0), "ts", num(0), "addr", num(0)),
		obj("u", num(-1), "i", num(0), "ts", num(0), "addr", num(0)),
		obj("u", num(0), "i", NumberFromBig(twoTo127), "ts", num(0), "addr", num(0)),
		obj("u", num(0), "i", num(0), "ts", str("yesterday"), "addr", num(0)),
		obj("u", num(0), "i", num(0), "ts", num(0), "addr", str("hello")),
		obj("u", num(0), "i", num(0), "ts", num(0), "addr", NumberFromBig(felt.Prime)),
	}
	for _, v := range bad {
		_, err := reg.Encode("N", v)
		var target *InvalidNumberError
		assert.ErrorAs(t, err, &target)
	}

	minI128 := new(big.Int).Neg(twoTo127)
	_, err = reg.Encode("N", obj("u", num(0), "i", NumberFromBig(minI128), "ts", num(0), "addr", num(0)))
	assert.NoError(t, err)
}

func TestEncodePrimitive_ShortStrings(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"S": {{Name: "f", Type: "felt"}, {Name: "s", Type: "shortstring"}},
	}, RevisionActive)

	encoded, err := reg.Encode("S", obj("f", str("hello"), "s", str("1")))
	require.NoError(t, err)
	assert.Equal(t, "0x68656c6c6f", hexOf(encoded[0]))
	assert.Equal(t, "0x1", hexOf(encoded[1]))

	tooLong := strings.Repeat("a", 32)
	_, err = reg.Encode("S", obj("f", str(tooLong), "s", str("x")))
	var target *InvalidShortStringError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, tooLong, target.Value)

	_, err = reg.Encode("S", obj("f", num(1), "s", str("naïve")))
	assert.ErrorAs(t, err, &target)

	_, err = reg.Encode("S", obj("f", num(1), "s", str("\x00a")))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "\x00a", target.Value)
}

func TestEncodePrimitive_Bool(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"B": {{Name: "b", Type: "bool"}},
	}, RevisionActive)

	for _, v := range []Value{BoolValue(true), num(1), str("true"), str("1")} {
		encoded, err := reg.Encode("B", obj("b", v))
		require.NoError(t, err)
		assert.Equal(t, "0x1", hexOf(encoded[0]))
	}
	for _, v := range []Value{BoolValue(false), num(0), str("false")} {
		encoded, err := reg.Encode("B", obj("b", v))
		require.NoError(t, err)
		assert.Equal(t, "0x0", hexOf(encoded[0]))
	}

	_, err := reg.Encode("B", obj("b", num(2)))
	var target *InvalidNumberError
	assert.ErrorAs(t, err, &target)
}

func TestEncodePrimitive_Selector(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Call": {{Name: "sel", Type: "selector"}},
	}, RevisionLegacy)

	encoded, err := reg.Encode("Call", obj("sel", str("transfer")))
	require.NoError(t, err)
	assert.Equal(t, hexOf(felt.Selector("transfer")), hexOf(encoded[0]))

	encoded, err = reg.Encode("Call", obj("sel", str("0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e")))
	require.NoError(t, err)
	assert.Equal(t, hexOf(felt.Selector("transfer")), hexOf(encoded[0]))

	for _, bad := range []string{"", "0xnothex", "tränsfer"} {
		_, err := reg.Encode("Call", obj("sel", str(bad)))
		var target *InvalidSelectorError
		require.ErrorAs(t, err, &target, bad)
		assert.Equal(t, bad, target.Value)
	}
}

func TestEncodePrimitive_StringByRevision(t *testing.T) {
	types := map[string][]FieldDef{
		"Note": {{Name: "text", Type: "string"}},
	}

	legacy, err := mustRegistry(t, types, RevisionLegacy).Encode("Note", obj("text", str("hi")))
	require.NoError(t, err)
	assert.Equal(t, "0x6869", hexOf(legacy[0]))

	active, err := mustRegistry(t, types, RevisionActive).Encode("Note", obj("text", str("hi")))
	require.NoError(t, err)
	expected := RevisionActive.HashArray(felt.FromUint64(0), felt.MustFromHex("0x6869"), felt.FromUint64(2))
	assert.Equal(t, hexOf(expected), hexOf(active[0]))

	long := strings.Repeat("x", 40) + "é"
	_, err = mustRegistry(t, types, RevisionActive).Encode("Note", obj("text", str(long)))
	assert.NoError(t, err)

	_, err = mustRegistry(t, types, RevisionLegacy).Encode("Note", obj("text", str(long)))
	var target *InvalidShortStringError
	assert.ErrorAs(t, err, &target)
}

func TestEncode_PresetTokenAmount(t *testing.T) {
	reg := mustRegistry(t, map[string][]FieldDef{
		"Transfer": {{Name: "amount", Type: "TokenAmount"}},
	}, RevisionActive)

	amount := obj(
		"token_address", str("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"),
		"amount", obj("low", num(1000), "high", num(0)),
	)
	got, err := reg.StructHash("Transfer", obj("amount", amount))
	require.NoError(t, err)

	u256Hash, err := reg.StructHash("u256", obj("low", num(1000), "high", num(0)))
	require.NoError(t, err)
	assert.Equal(t,
		"0x3b143be38b811560b45593fb2a071ec4ddd0a020e10782be62ffe6f39e0e82c",
		hexOf(mustTypeHash(t, reg, "u256")))

	tokenHash := RevisionActive.HashArray(
		mustTypeHash(t, reg, "TokenAmount"),
		felt.MustFromHex("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"),
		u256Hash,
	)
	expected := RevisionActive.HashArray(mustTypeHash(t, reg, "Transfer"), tokenHash)
	assert.Equal(t, hexOf(expected), hexOf(got))
}
