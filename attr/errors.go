package attr

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNameTaken is returned by Attach when the name is already in use.
	ErrNameTaken = errors.New("attribute with same name already exists")
	// ErrNotFound is returned when no attribute is registered under a name.
	ErrNotFound = errors.New("no such attribute")
	// ErrTypeMismatch is returned by Get when the requested value type differs
	// from the attribute's declared type.
	ErrTypeMismatch = errors.New("attribute type mismatch")
	// ErrAttributeInvalid is returned by every handle operation once the
	// attribute behind the handle was detached or its registry closed.
	ErrAttributeInvalid = errors.New("invalid attribute")
	// ErrValueMissing is returned by ReadAt and IndexAccessor.Read when no value
	// is currently set at the index.
	ErrValueMissing = errors.New("invalid attribute value")
)

// TypeMismatchError describes a typed lookup against a differently typed attribute.
//
// It unwraps to ErrTypeMismatch.
type TypeMismatchError struct {
	Name      string
	Declared  reflect.Type
	Requested reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: %q holds %s, requested %s", ErrTypeMismatch, e.Name, e.Declared, e.Requested)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

func nameTaken(name string) error {
	return fmt.Errorf("%w: %q", ErrNameTaken, name)
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

func attributeInvalid(name string) error {
	return fmt.Errorf("%w: %q", ErrAttributeInvalid, name)
}

func valueMissing(name string, i Index) error {
	return fmt.Errorf("%w: %q at index %d", ErrValueMissing, name, i)
}
