package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteRecord is matched by IncompleteRecordError through errors.Is.
var ErrIncompleteRecord = errors.New("incomplete record")

// IncompleteRecordError rejects a record that lacks a field the export
// document requires. The record is not patched.
type IncompleteRecordError struct {
	Identity string
	Project  string
	Missing  []string
}

func (e *IncompleteRecordError) Error() string {
	name := e.Identity
	if name == "" {
		name = "record"
	}
	return fmt.Sprintf("cannot export %s for project %s: missing %s",
		name, e.Project, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrIncompleteRecord) succeed.
func (e *IncompleteRecordError) Is(target error) bool {
	return target == ErrIncompleteRecord
}
