package typeddata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnexpectedContainsField is returned when `contains` is set on a type
	// that is neither `merkletree` nor `enum`.
	ErrUnexpectedContainsField = errors.New("unexpected presence of the `contains` field")
	// ErrInvalidEnumFieldCount is returned when an enum value object does not
	// have exactly one entry.
	ErrInvalidEnumFieldCount = errors.New("enum values must have 1 and only 1 field")
	// ErrEmptyMerkleTree is returned for a `merkletree` value without leaves.
	ErrEmptyMerkleTree = errors.New("`merkletree` values must not be empty")
	// ErrMissingAccount is returned when a message hash is requested without
	// an account address.
	ErrMissingAccount = errors.New("account address is required")
)

// InconsistentRevisionError reports that the revision implied by the type
// definitions differs from the one carried by the domain.
type InconsistentRevisionError struct {
	Types  Revision
	Domain Revision
}

func (e *InconsistentRevisionError) Error() string {
	return fmt.Sprintf("`types` implies revision %s but `domain` uses revision %s", e.Types, e.Domain)
}

type InvalidTypeNameError struct {
	Name string
}

func (e *InvalidTypeNameError) Error() string {
	return fmt.Sprintf("invalid type name: %s", e.Name)
}

type CustomTypeNotFoundError struct {
	Name string
}

func (e *CustomTypeNotFoundError) Error() string {
	return fmt.Sprintf("type `%s` not defined", e.Name)
}

// DuplicateFieldError reports a field or variant name declared twice in one
// definition.
type DuplicateFieldError struct {
	Type  string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field `%s` declared more than once in type `%s`", e.Field, e.Type)
}

type FieldNotFoundError struct {
	Name string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field `%s` not found in value", e.Name)
}

// UnexpectedValueTypeError lists every value kind acceptable at the failing
// position together with the kind actually found.
type UnexpectedValueTypeError struct {
	Expected []ValueKind
	Actual   ValueKind
}

func (e *UnexpectedValueTypeError) Error() string {
	kinds := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		kinds[i] = k.String()
	}
	return fmt.Sprintf("unexpected value type %s, expecting %s", e.Actual, strings.Join(kinds, ", "))
}

type StructFieldCountMismatchError struct {
	Expected int
	Actual   int
}

func (e *StructFieldCountMismatchError) Error() string {
	return fmt.Sprintf("expected %d fields in struct but found %d", e.Expected, e.Actual)
}

type EnumElementCountMismatchError struct {
	Expected int
	Actual   int
}

func (e *EnumElementCountMismatchError) Error() string {
	return fmt.Sprintf("expected %d elements in enum variant but found %d", e.Expected, e.Actual)
}

type EnumVariantNotFoundError struct {
	Name string
}

func (e *EnumVariantNotFoundError) Error() string {
	return fmt.Sprintf("enum variant `%s` not defined", e.Name)
}

// UnexpectedStructError is returned when an enum was required but the name
// resolves to a struct.
type UnexpectedStructError struct {
	Name string
}

func (e *UnexpectedStructError) Error() string {
	return fmt.Sprintf("expected type `%s` to be enum but is struct", e.Name)
}

// UnexpectedEnumError is returned when a struct was required but the name
// resolves to an enum.
type UnexpectedEnumError struct {
	Name string
}

func (e *UnexpectedEnumError) Error() string {
	return fmt.Sprintf("expected type `%s` to be struct but is enum", e.Name)
}

type InvalidShortStringError struct {
	Value string
}

func (e *InvalidShortStringError) Error() string {
	return fmt.Sprintf("%q is not a valid Cairo short string", e.Value)
}

type InvalidSelectorError struct {
	Value string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("%q is not a valid function selector", e.Value)
}

type InvalidNumberError struct {
	Value string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("%q is not a valid number", e.Value)
}

func unexpectedKind(actual Value, expected ...ValueKind) error {
	return &UnexpectedValueTypeError{Expected: expected, Actual: kindOf(actual)}
}

func kindOf(v Value) ValueKind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
