package definitions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLookupMissing is matched by LookupMissingError through errors.Is.
var ErrLookupMissing = errors.New("no definition found")

// LookupMissingError reports that no definition matches a key and project.
// Registration of the affected test aborts.
type LookupMissingError struct {
	Key     string
	Project string
}

func (e *LookupMissingError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("no definition found for %s", e.Key)
	}
	return fmt.Sprintf("no definition found for %s in project %s", e.Key, e.Project)
}

// Is makes errors.Is(err, ErrLookupMissing) succeed.
func (e *LookupMissingError) Is(target error) bool {
	return target == ErrLookupMissing
}

// LookupAmbiguousError describes a lookup that matched several definitions.
// It is only ever logged: the first match is used.
type LookupAmbiguousError struct {
	Key     string
	Project string
	Paths   []string
}

func (e *LookupAmbiguousError) Error() string {
	return fmt.Sprintf("%d definitions match %s in project %s (%s), using the first",
		len(e.Paths), e.Key, e.Project, strings.Join(e.Paths, ", "))
}
