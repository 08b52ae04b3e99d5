package typeddata

import (
	"strconv"

	"github.com/NethermindEth/juno/core/crypto"

	"github.com/nando-os/ghost-stark/felt"
)

// Revision selects one of the two incompatible SNIP-12 rule sets.
type Revision uint8

const (
	// RevisionLegacy hashes with Pedersen and writes unquoted type strings.
	RevisionLegacy Revision = 0
	// RevisionActive hashes with Poseidon, quotes type strings and adds enums,
	// presets and the extended primitive set.
	RevisionActive Revision = 1
)

const (
	legacyDomainType = "StarkNetDomain"
	activeDomainType = "StarknetDomain"

	revisionField = "revision"
	messagePrefix = "StarkNet Message"
)

func (r Revision) String() string {
	return strconv.Itoa(int(r))
}

// DomainType returns the name of the domain separator struct for r.
func (r Revision) DomainType() string {
	if r == RevisionActive {
		return activeDomainType
	}
	return legacyDomainType
}

// HashArray is the revision's chaining hash over a sequence of elements:
// Pedersen compute_hash_on_elements for legacy, poseidon_hash_many for active.
func (r Revision) HashArray(elems ...*felt.Felt) *felt.Felt {
	if r == RevisionActive {
		return crypto.PoseidonArray(elems...)
	}
	return crypto.PedersenArray(elems...)
}

// HashPair is the two-input hash used for Merkle tree nodes.
func (r Revision) HashPair(a, b *felt.Felt) *felt.Felt {
	if r == RevisionActive {
		return crypto.Poseidon(a, b)
	}
	return crypto.Pedersen(a, b)
}

func (r Revision) escape(s string) string {
	if r == RevisionActive {
		return `"` + s + `"`
	}
	return s
}

// ResolveRevision reads the revision carried by a domain object. A missing
// field or 0 means legacy; 1 means active. When declared is non-nil the two
// must agree.
func ResolveRevision(domain Value, declared *Revision) (Revision, error) {
	obj, ok := domain.(ObjectValue)
	if !ok {
		return 0, unexpectedKind(domain, KindObject)
	}

	rev := RevisionLegacy
	if v, ok := obj.Get(revisionField); ok {
		var raw string
		switch tv := v.(type) {
		case NumberValue:
			raw = tv.Int().String()
		case StringValue:
			raw = string(tv)
		default:
			return 0, unexpectedKind(v, KindNumber, KindString)
		}
		switch raw {
		case "0":
			rev = RevisionLegacy
		case "1":
			rev = RevisionActive
		default:
			return 0, &InvalidNumberError{Value: raw}
		}
	}

	if declared != nil && *declared != rev {
		return 0, &InconsistentRevisionError{Types: *declared, Domain: rev}
	}
	return rev, nil
}

// revisionFromTypes infers the revision from which domain struct the type
// definitions declare.
func revisionFromTypes(types map[string][]FieldDef) (Revision, error) {
	_, legacy := types[legacyDomainType]
	_, active := types[activeDomainType]
	switch {
	case active && legacy:
		return 0, &InvalidTypeNameError{Name: activeDomainType}
	case active:
		return RevisionActive, nil
	case legacy:
		return RevisionLegacy, nil
	default:
		return 0, &CustomTypeNotFoundError{Name: activeDomainType}
	}
}
