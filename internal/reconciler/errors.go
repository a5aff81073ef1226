package reconciler

import (
	"errors"
	"fmt"
)

// ErrIdentifierMismatch is matched by IdentifierMismatchError through errors.Is.
var ErrIdentifierMismatch = errors.New("identifier mismatch")

// IdentifierMismatchError reports a pair whose mapping id and definition id are
// both set but differ. Neither side is changed; a human has to decide.
type IdentifierMismatchError struct {
	Identity     string
	Project      string
	MappingID    string
	DefinitionID string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("identifier mismatch for %s in project %s: mapping has %q, definition has %q",
		e.Identity, e.Project, e.MappingID, e.DefinitionID)
}

// Is makes errors.Is(err, ErrIdentifierMismatch) succeed.
func (e *IdentifierMismatchError) Is(target error) bool {
	return target == ErrIdentifierMismatch
}
