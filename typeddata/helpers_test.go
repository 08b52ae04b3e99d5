package typeddata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nando-os/ghost-stark/felt"
)

// obj builds an object from alternating key/value arguments.
func obj(kv ...any) ObjectValue {
	entries := make([]Entry, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		entries = append(entries, Entry{Key: kv[i].(string), Value: kv[i+1].(Value)})
	}
	return MustObject(entries...)
}

func num(i int64) NumberValue {
	return NumberFromInt(i)
}

func str(s string) StringValue {
	return StringValue(s)
}

func mustRegistry(t *testing.T, types map[string][]FieldDef, rev Revision) *Registry {
	t.Helper()
	reg, err := NewRegistry(types, rev)
	require.NoError(t, err)
	return reg
}

func mustTypeHash(t *testing.T, reg *Registry, name string) *felt.Felt {
	t.Helper()
	h, err := reg.TypeHash(name)
	require.NoError(t, err)
	return h
}

func hexOf(f *felt.Felt) string {
	return felt.Hex(f)
}
