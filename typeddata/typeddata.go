// Package typeddata computes SNIP-12 typed data hashes: the Starknet
// counterpart of EIP-712 structured data signing.
//
// A TypedData value is validated once at construction and is immutable
// afterwards, so hashes may be computed concurrently.
package typeddata

import (
	"encoding/json"
	"fmt"

	"github.com/nando-os/ghost-stark/felt"
)

// TypedData is a validated typed data document.
type TypedData struct {
	registry    *Registry
	primaryType string
	domain      Value
	message     Value
}

// NewTypedData validates the type definitions against the revision carried
// by the domain, and checks that the primary and domain types are structs.
func NewTypedData(types map[string][]FieldDef, primaryType string, domain, message Value) (*TypedData, error) {
	for _, v := range []Value{domain, message} {
		if _, ok := v.(ObjectValue); !ok {
			return nil, unexpectedKind(v, KindObject)
		}
	}

	typesRev, err := revisionFromTypes(types)
	if err != nil {
		return nil, err
	}
	rev, err := ResolveRevision(domain, &typesRev)
	if err != nil {
		return nil, err
	}

	reg, err := NewRegistry(types, rev)
	if err != nil {
		return nil, err
	}
	if err := reg.IsStruct(rev.DomainType()); err != nil {
		return nil, err
	}
	if err := reg.IsStruct(primaryType); err != nil {
		return nil, err
	}

	return &TypedData{
		registry:    reg,
		primaryType: primaryType,
		domain:      domain,
		message:     message,
	}, nil
}

type typedDataJSON struct {
	Types       map[string][]FieldDef `json:"types"`
	PrimaryType string                `json:"primaryType"`
	Domain      json.RawMessage       `json:"domain"`
	Message     json.RawMessage       `json:"message"`
}

// UnmarshalJSON accepts the conventional {types, primaryType, domain, message}
// document.
func (td *TypedData) UnmarshalJSON(data []byte) error {
	var raw typedDataJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Domain == nil || raw.Message == nil {
		return fmt.Errorf("typed data requires both domain and message")
	}
	domain, err := ParseValue(raw.Domain)
	if err != nil {
		return fmt.Errorf("invalid domain: %w", err)
	}
	message, err := ParseValue(raw.Message)
	if err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	parsed, err := NewTypedData(raw.Types, raw.PrimaryType, domain, message)
	if err != nil {
		return err
	}
	*td = *parsed
	return nil
}

// Parse decodes and validates a JSON typed data document.
func Parse(data []byte) (*TypedData, error) {
	td := new(TypedData)
	if err := json.Unmarshal(data, td); err != nil {
		return nil, err
	}
	return td, nil
}

func (td *TypedData) Revision() Revision {
	return td.registry.revision
}

func (td *TypedData) PrimaryType() string {
	return td.primaryType
}

func (td *TypedData) Registry() *Registry {
	return td.registry
}

func (td *TypedData) EncodeType(name string) (string, error) {
	return td.registry.EncodeType(name)
}

func (td *TypedData) TypeHash(name string) (*felt.Felt, error) {
	return td.registry.TypeHash(name)
}

// StructHash hashes an arbitrary value against one of the document's structs.
func (td *TypedData) StructHash(typeName string, value Value) (*felt.Felt, error) {
	return td.registry.StructHash(typeName, value)
}

// DomainHash is the struct hash of the domain separator.
func (td *TypedData) DomainHash() (*felt.Felt, error) {
	return td.registry.StructHash(td.Revision().DomainType(), td.domain)
}

// MessageStructHash is the struct hash of the message under the primary type.
func (td *TypedData) MessageStructHash() (*felt.Felt, error) {
	return td.registry.StructHash(td.primaryType, td.message)
}

// MessageHash returns the signable hash of the document for account:
// hash("StarkNet Message", domain hash, account, message hash).
func (td *TypedData) MessageHash(account *felt.Felt) (*felt.Felt, error) {
	if account == nil {
		return nil, ErrMissingAccount
	}
	prefix, err := felt.EncodeShortString(messagePrefix)
	if err != nil {
		return nil, err
	}
	domainHash, err := td.DomainHash()
	if err != nil {
		return nil, err
	}
	messageHash, err := td.MessageStructHash()
	if err != nil {
		return nil, err
	}
	return td.Revision().HashArray(prefix, domainHash, account, messageHash), nil
}
