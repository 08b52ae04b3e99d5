package typeddata

import (
	"github.com/nando-os/ghost-stark/felt"
)

// HashStruct chains the type hash of typeName with an already encoded field
// sequence.
func (r *Registry) HashStruct(typeName string, encoded []*felt.Felt) (*felt.Felt, error) {
	typeHash, ok := r.typeHashes[typeName]
	if !ok {
		return nil, &CustomTypeNotFoundError{Name: typeName}
	}
	elems := make([]*felt.Felt, 0, len(encoded)+1)
	elems = append(elems, typeHash)
	elems = append(elems, encoded...)
	return r.revision.HashArray(elems...), nil
}

// StructHash encodes value as typeName, which must be a struct, and hashes it.
func (r *Registry) StructHash(typeName string, value Value) (*felt.Felt, error) {
	def, err := r.structDef(typeName)
	if err != nil {
		return nil, err
	}
	encoded, err := r.encodeStruct(def, value)
	if err != nil {
		return nil, err
	}
	return r.HashStruct(typeName, encoded)
}

// MerkleRoot commits to an ordered, non-empty leaf list. Each pair is hashed
// smaller value first. A lone node at the end of a level moves up unchanged,
// so a single leaf is its own root.
func (r Revision) MerkleRoot(leaves []*felt.Felt) (*felt.Felt, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyMerkleTree
	}

	level := leaves
	for len(level) > 1 {
		next := make([]*felt.Felt, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			a, b := level[i], level[i+1]
			if felt.ToBigInt(a).Cmp(felt.ToBigInt(b)) > 0 {
				a, b = b, a
			}
			next = append(next, r.HashPair(a, b))
		}
		level = next
	}
	return clone(level[0]), nil
}
