// Package testcase defines the metadata attached to a test function: the
// per-project Record, its ordered test steps, its enumerated custom fields and
// the links to other work items.
//
// The enumerations (Importance, Automation, Level, PosNeg, TestType, SubType,
// Role) are closed string types. Their wire values are the identifiers the
// remote test-management system expects, and decoding from YAML or JSON
// rejects anything outside the set.
//
// Records are assembled from an inline Definition, a record loaded from the
// definition store, or both combined with Merge. WithDefaults fills every
// recognized custom field that is still empty.
package testcase
