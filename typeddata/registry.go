package typeddata

import (
	"sort"
	"strings"

	"github.com/nando-os/ghost-stark/felt"
)

// FieldDef is one entry of a type definition as it appears in a typed data
// document: {"name": ..., "type": ..., "contains": ...}.
type FieldDef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Contains string `json:"contains,omitempty"`
}

type TypeKind uint8

const (
	StructType TypeKind = iota
	EnumType
)

const (
	typeMerkleTree = "merkletree"
	typeEnum       = "enum"

	reservedChars = `*(),":`
)

var legacyPrimitives = map[string]bool{
	"felt":     true,
	"bool":     true,
	"string":   true,
	"selector": true,
}

var activePrimitives = map[string]bool{
	"felt":            true,
	"bool":            true,
	"string":          true,
	"selector":        true,
	"u128":            true,
	"i128":            true,
	"ContractAddress": true,
	"ClassHash":       true,
	"timestamp":       true,
	"shortstring":     true,
}

// activePresets are struct types every active revision registry knows about
// without the document declaring them.
var activePresets = map[string][]FieldDef{
	"u256": {
		{Name: "low", Type: "u128"},
		{Name: "high", Type: "u128"},
	},
	"TokenAmount": {
		{Name: "token_address", Type: "ContractAddress"},
		{Name: "amount", Type: "u256"},
	},
	"NftId": {
		{Name: "collection_address", Type: "ContractAddress"},
		{Name: "token_id", Type: "u256"},
	},
}

type refKind uint8

const (
	refPrimitive refKind = iota
	refCustom
	refArray
	refMerkleTree
	refEnum
)

// typeRef is a parsed type reference. Custom types are referred to by name
// only, so recursive definitions never form pointer cycles.
type typeRef struct {
	kind refKind
	name string
	elem *typeRef
}

// Field is a struct member.
type Field struct {
	Name     string
	Type     string
	Contains string
	ref      typeRef
}

// Variant is an enum variant with its ordered slot types.
type Variant struct {
	Name  string
	Slots []string
	refs  []typeRef
}

// Definition is a named struct or enum.
type Definition struct {
	Name     string
	Kind     TypeKind
	Fields   []Field
	Variants []Variant
	Preset   bool
}

func (d *Definition) variant(name string) (int, *Variant, bool) {
	for i := range d.Variants {
		if d.Variants[i].Name == name {
			return i, &d.Variants[i], true
		}
	}
	return 0, nil, false
}

// Registry is the validated, immutable set of type definitions of one
// document under one revision.
type Registry struct {
	revision    Revision
	defs        map[string]*Definition
	typeStrings map[string]string
	typeHashes  map[string]*felt.Felt
}

// NewRegistry parses and validates the definitions. Every reference must
// resolve; recursion between types is allowed.
func NewRegistry(types map[string][]FieldDef, rev Revision) (*Registry, error) {
	r := &Registry{
		revision:    rev,
		defs:        make(map[string]*Definition, len(types)),
		typeStrings: make(map[string]string, len(types)),
		typeHashes:  make(map[string]*felt.Felt, len(types)),
	}

	for _, name := range sortedKeys(types) {
		if err := r.checkTypeName(name); err != nil {
			return nil, err
		}
		def, err := r.parseDefinition(name, types[name])
		if err != nil {
			return nil, err
		}
		r.defs[name] = def
	}

	if rev == RevisionActive {
		for _, name := range sortedKeys(activePresets) {
			def, err := r.parseDefinition(name, activePresets[name])
			if err != nil {
				return nil, err
			}
			def.Preset = true
			r.defs[name] = def
		}
	}

	for _, name := range sortedKeys(r.defs) {
		if err := r.validate(r.defs[name]); err != nil {
			return nil, err
		}
	}

	for name := range r.defs {
		s := r.encodeType(name)
		r.typeStrings[name] = s
		r.typeHashes[name] = felt.StarknetKeccak([]byte(s))
	}
	return r, nil
}

func (r *Registry) Revision() Revision {
	return r.revision
}

// Resolve returns a copy of the named definition.
func (r *Registry) Resolve(name string) (Definition, error) {
	def, err := r.lookup(name)
	if err != nil {
		return Definition{}, err
	}
	out := *def
	out.Fields = append([]Field(nil), def.Fields...)
	out.Variants = append([]Variant(nil), def.Variants...)
	return out, nil
}

// IsStruct fails with UnexpectedEnumError when name is an enum.
func (r *Registry) IsStruct(name string) error {
	_, err := r.structDef(name)
	return err
}

// IsEnum fails with UnexpectedStructError when name is a struct.
func (r *Registry) IsEnum(name string) error {
	_, err := r.enumDef(name)
	return err
}

// EncodeType returns the canonical type string of name including every type
// it transitively references.
func (r *Registry) EncodeType(name string) (string, error) {
	if _, err := r.lookup(name); err != nil {
		return "", err
	}
	return r.typeStrings[name], nil
}

// TypeHash is starknet_keccak of EncodeType(name).
func (r *Registry) TypeHash(name string) (*felt.Felt, error) {
	if _, err := r.lookup(name); err != nil {
		return nil, err
	}
	return clone(r.typeHashes[name]), nil
}

func (r *Registry) lookup(name string) (*Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &CustomTypeNotFoundError{Name: name}
	}
	return def, nil
}

func (r *Registry) structDef(name string) (*Definition, error) {
	def, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if def.Kind != StructType {
		return nil, &UnexpectedEnumError{Name: name}
	}
	return def, nil
}

func (r *Registry) enumDef(name string) (*Definition, error) {
	def, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if def.Kind != EnumType {
		return nil, &UnexpectedStructError{Name: name}
	}
	return def, nil
}

func (r *Registry) isPrimitive(name string) bool {
	if r.revision == RevisionActive {
		return activePrimitives[name]
	}
	return legacyPrimitives[name]
}

func (r *Registry) checkTypeName(name string) error {
	if name == "" || strings.ContainsAny(name, reservedChars) {
		return &InvalidTypeNameError{Name: name}
	}
	if r.isPrimitive(name) || name == typeMerkleTree || name == typeEnum {
		return &InvalidTypeNameError{Name: name}
	}
	if _, preset := activePresets[name]; preset && r.revision == RevisionActive {
		return &InvalidTypeNameError{Name: name}
	}
	return nil
}

func (r *Registry) parseDefinition(name string, fields []FieldDef) (*Definition, error) {
	def := &Definition{Name: name, Kind: StructType}
	seen := make(map[string]bool, len(fields))

	if r.revision == RevisionActive && isEnumDefinition(fields) {
		def.Kind = EnumType
		for _, f := range fields {
			if seen[f.Name] {
				return nil, &DuplicateFieldError{Type: name, Field: f.Name}
			}
			seen[f.Name] = true
			if f.Contains != "" {
				return nil, ErrUnexpectedContainsField
			}
			v := Variant{Name: f.Name, Slots: splitTuple(f.Type)}
			for _, slot := range v.Slots {
				ref, err := r.parseRef(slot)
				if err != nil {
					return nil, err
				}
				v.refs = append(v.refs, ref)
			}
			def.Variants = append(def.Variants, v)
		}
		return def, nil
	}

	for _, f := range fields {
		if seen[f.Name] {
			return nil, &DuplicateFieldError{Type: name, Field: f.Name}
		}
		seen[f.Name] = true
		ref, err := r.parseFieldRef(f)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, Field{Name: f.Name, Type: f.Type, Contains: f.Contains, ref: ref})
	}
	return def, nil
}

func (r *Registry) parseFieldRef(f FieldDef) (typeRef, error) {
	switch {
	case f.Type == typeMerkleTree:
		if f.Contains == "" {
			return typeRef{}, &InvalidTypeNameError{Name: f.Type}
		}
		leaf, err := r.parseRef(f.Contains)
		if err != nil {
			return typeRef{}, err
		}
		if leaf.kind == refArray {
			return typeRef{}, &InvalidTypeNameError{Name: f.Contains}
		}
		return typeRef{kind: refMerkleTree, name: f.Contains, elem: &leaf}, nil
	case f.Type == typeEnum && r.revision == RevisionActive:
		if f.Contains == "" {
			return typeRef{}, &InvalidTypeNameError{Name: f.Type}
		}
		return typeRef{kind: refEnum, name: f.Contains}, nil
	case f.Contains != "":
		return typeRef{}, ErrUnexpectedContainsField
	}
	return r.parseRef(f.Type)
}

func (r *Registry) parseRef(s string) (typeRef, error) {
	if base, ok := strings.CutSuffix(s, "*"); ok {
		elem, err := r.parseRef(base)
		if err != nil {
			return typeRef{}, err
		}
		return typeRef{kind: refArray, name: s, elem: &elem}, nil
	}
	if r.isPrimitive(s) {
		return typeRef{kind: refPrimitive, name: s}, nil
	}
	if s == "" || s == typeMerkleTree || s == typeEnum || strings.ContainsAny(s, reservedChars) {
		return typeRef{}, &InvalidTypeNameError{Name: s}
	}
	return typeRef{kind: refCustom, name: s}, nil
}

func (r *Registry) validate(def *Definition) error {
	for _, f := range def.Fields {
		if err := r.validateRef(f.ref); err != nil {
			return err
		}
	}
	for _, v := range def.Variants {
		for _, ref := range v.refs {
			if err := r.validateRef(ref); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateRef only checks that names resolve to the right kind; it does not
// descend into the referenced definitions, so cycles terminate.
func (r *Registry) validateRef(ref typeRef) error {
	switch ref.kind {
	case refCustom:
		_, err := r.structDef(ref.name)
		return err
	case refArray, refMerkleTree:
		return r.validateRef(*ref.elem)
	case refEnum:
		_, err := r.enumDef(ref.name)
		return err
	}
	return nil
}

// dependencies lists name followed by every custom type reachable from it,
// each once, in first-appearance order. Merkle leaf types are not part of
// the type string.
func (r *Registry) dependencies(name string) []string {
	seen := map[string]bool{name: true}
	order := []string{name}

	var walkDef func(def *Definition)
	var walk func(ref typeRef)
	walk = func(ref typeRef) {
		switch ref.kind {
		case refArray:
			walk(*ref.elem)
		case refCustom, refEnum:
			if seen[ref.name] {
				return
			}
			seen[ref.name] = true
			order = append(order, ref.name)
			walkDef(r.defs[ref.name])
		}
	}
	walkDef = func(def *Definition) {
		for _, f := range def.Fields {
			walk(f.ref)
		}
		for _, v := range def.Variants {
			for _, ref := range v.refs {
				walk(ref)
			}
		}
	}

	walkDef(r.defs[name])
	return order
}

func (r *Registry) encodeType(name string) string {
	deps := r.dependencies(name)
	// the primary type leads; referenced types follow in alphabetical order
	sort.Strings(deps[1:])

	esc := r.revision.escape
	var b strings.Builder
	for _, dep := range deps {
		def := r.defs[dep]
		b.WriteString(esc(dep))
		b.WriteByte('(')
		if def.Kind == EnumType {
			for i, v := range def.Variants {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(esc(v.Name))
				b.WriteByte('(')
				for j, slot := range v.Slots {
					if j > 0 {
						b.WriteByte(',')
					}
					b.WriteString(esc(slot))
				}
				b.WriteByte(')')
			}
		} else {
			for i, f := range def.Fields {
				if i > 0 {
					b.WriteByte(',')
				}
				typ := f.Type
				if f.ref.kind == refEnum {
					typ = f.Contains
				}
				b.WriteString(esc(f.Name))
				b.WriteByte(':')
				b.WriteString(esc(typ))
			}
		}
		b.WriteByte(')')
	}
	return b.String()
}

func isEnumDefinition(fields []FieldDef) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.HasPrefix(f.Type, "(") || !strings.HasSuffix(f.Type, ")") {
			return false
		}
	}
	return true
}

func splitTuple(s string) []string {
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil
	}
	return strings.Split(inner, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clone(f *felt.Felt) *felt.Felt {
	b := f.Bytes()
	return new(felt.Felt).SetBytes(b[:])
}
