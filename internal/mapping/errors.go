package mapping

import (
	"errors"
	"fmt"
)

// ErrStoreNotFound is matched by StoreNotFoundError through errors.Is.
var ErrStoreNotFound = errors.New("store not found")

// StoreNotFoundError reports that the backing file of a durable store does not exist.
// It is shared by the mapping store and the definition store.
type StoreNotFoundError struct {
	Store string
	Path  string
}

func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("%s not found at %s", e.Store, e.Path)
}

// Is makes errors.Is(err, ErrStoreNotFound) succeed.
func (e *StoreNotFoundError) Is(target error) bool {
	return target == ErrStoreNotFound
}
