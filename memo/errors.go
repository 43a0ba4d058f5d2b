package memo

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrPoisoned is wrapped by the panic value raised when a site or slot is
// used after a panic unwound through one of its critical sections.
// Recovery is not supported: the state behind the lock may be inconsistent.
var ErrPoisoned = errors.New("memo: poisoned by an earlier panic; handling of poisoning is not supported")

// TypeMismatchError is the panic value raised when a slot is accessed as a
// store type other than the one it was created with. It indicates two call
// paths sharing a site name and instantiation but disagreeing on the store.
type TypeMismatchError struct {
	Site          string
	Instantiation Instantiation
	Created       reflect.Type
	Requested     reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("memo: site %q %v: slot holds %v, accessed as %v",
		e.Site, e.Instantiation, e.Created, e.Requested)
}

func poisoned(what, site string) error {
	return fmt.Errorf("%s of site %q: %w", what, site, ErrPoisoned)
}
