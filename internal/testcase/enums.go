package testcase

import (
	"fmt"
	"strings"
)

// Importance is the caseimportance custom field.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Automation is the caseautomation custom field.
type Automation string

const (
	AutomationAutomated    Automation = "automated"
	AutomationNotAutomated Automation = "notautomated"
	AutomationManualOnly   Automation = "manualonly"
)

// Level is the caselevel custom field.
type Level string

const (
	LevelComponent   Level = "component"
	LevelIntegration Level = "integration"
	LevelSystem      Level = "system"
	LevelAcceptance  Level = "acceptance"
)

// PosNeg is the caseposneg custom field.
type PosNeg string

const (
	PosNegPositive PosNeg = "positive"
	PosNegNegative PosNeg = "negative"
)

// TestType is the testtype custom field.
type TestType string

const (
	TestTypeFunctional    TestType = "functional"
	TestTypeNonFunctional TestType = "nonfunctional"
	TestTypeStructural    TestType = "structural"
)

// SubType is used by both the subtype1 and subtype2 custom fields.
type SubType string

const (
	SubTypeEmpty            SubType = "-"
	SubTypeCompliance       SubType = "compliance"
	SubTypeDocumentation    SubType = "documentation"
	SubTypeI18NL10N         SubType = "i18nl10n"
	SubTypeInstallability   SubType = "installability"
	SubTypeInteroperability SubType = "interoperability"
	SubTypePerformance      SubType = "performance"
	SubTypeReliability      SubType = "reliability"
	SubTypeScalability      SubType = "scalability"
	SubTypeSecurity         SubType = "security"
	SubTypeUsability        SubType = "usability"
	SubTypeRecoveryFailover SubType = "recoveryfailover"
)

// Role is the link role of a linked work item.
type Role string

const (
	RoleRelatesTo    Role = "relates_to"
	RoleHasParent    Role = "has_parent"
	RoleDuplicates   Role = "duplicates"
	RoleVerifies     Role = "verifies"
	RoleIsRelatedTo  Role = "is_related_to"
	RoleIsParentOf   Role = "is_parent_of"
	RoleDuplicatedBy Role = "duplicated_by"
	RoleTriggers     Role = "triggers"
)

var (
	importances = []Importance{ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow}
	automations = []Automation{AutomationAutomated, AutomationNotAutomated, AutomationManualOnly}
	levels      = []Level{LevelComponent, LevelIntegration, LevelSystem, LevelAcceptance}
	posNegs     = []PosNeg{PosNegPositive, PosNegNegative}
	testTypes   = []TestType{TestTypeFunctional, TestTypeNonFunctional, TestTypeStructural}
	subTypes    = []SubType{
		SubTypeEmpty, SubTypeCompliance, SubTypeDocumentation, SubTypeI18NL10N,
		SubTypeInstallability, SubTypeInteroperability, SubTypePerformance,
		SubTypeReliability, SubTypeScalability, SubTypeSecurity, SubTypeUsability,
		SubTypeRecoveryFailover,
	}
	roles = []Role{
		RoleRelatesTo, RoleHasParent, RoleDuplicates, RoleVerifies,
		RoleIsRelatedTo, RoleIsParentOf, RoleDuplicatedBy, RoleTriggers,
	}
)

// parseEnum matches s case-insensitively against the closed set of values.
// An empty string parses to the zero value, which means "unset".
func parseEnum[T ~string](kind string, s string, values []T) (T, error) {
	var zero T
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return zero, nil
	}
	for _, v := range values {
		if string(v) == normalized {
			return v, nil
		}
	}
	valid := make([]string, len(values))
	for i, v := range values {
		valid[i] = string(v)
	}
	return zero, fmt.Errorf("invalid %s %q (valid: %s)", kind, s, strings.Join(valid, ", "))
}

func isValid[T ~string](v T, values []T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseImportance parses an importance name.
func ParseImportance(s string) (Importance, error) { return parseEnum("importance", s, importances) }

// ParseAutomation parses an automation name.
func ParseAutomation(s string) (Automation, error) { return parseEnum("automation", s, automations) }

// ParseLevel parses a case level name.
func ParseLevel(s string) (Level, error) { return parseEnum("level", s, levels) }

// ParsePosNeg parses a positive/negative classification.
func ParsePosNeg(s string) (PosNeg, error) { return parseEnum("posneg", s, posNegs) }

// ParseTestType parses a test type name.
func ParseTestType(s string) (TestType, error) { return parseEnum("test type", s, testTypes) }

// ParseSubType parses a subtype name.
func ParseSubType(s string) (SubType, error) { return parseEnum("subtype", s, subTypes) }

// ParseRole parses a link role name.
func ParseRole(s string) (Role, error) { return parseEnum("role", s, roles) }

func (v Importance) String() string { return string(v) }
func (v Automation) String() string { return string(v) }
func (v Level) String() string      { return string(v) }
func (v PosNeg) String() string     { return string(v) }
func (v TestType) String() string   { return string(v) }
func (v SubType) String() string    { return string(v) }
func (v Role) String() string       { return string(v) }

func (v Importance) Valid() bool { return isValid(v, importances) }
func (v Automation) Valid() bool { return isValid(v, automations) }
func (v Level) Valid() bool      { return isValid(v, levels) }
func (v PosNeg) Valid() bool     { return isValid(v, posNegs) }
func (v TestType) Valid() bool   { return isValid(v, testTypes) }
func (v SubType) Valid() bool    { return isValid(v, subTypes) }
func (v Role) Valid() bool       { return isValid(v, roles) }

// UnmarshalText lets YAML and JSON decoding reject values outside the enumeration.

func (v *Importance) UnmarshalText(b []byte) (err error) {
	*v, err = ParseImportance(string(b))
	return err
}

func (v *Automation) UnmarshalText(b []byte) (err error) {
	*v, err = ParseAutomation(string(b))
	return err
}

func (v *Level) UnmarshalText(b []byte) (err error) {
	*v, err = ParseLevel(string(b))
	return err
}

func (v *PosNeg) UnmarshalText(b []byte) (err error) {
	*v, err = ParsePosNeg(string(b))
	return err
}

func (v *TestType) UnmarshalText(b []byte) (err error) {
	*v, err = ParseTestType(string(b))
	return err
}

func (v *SubType) UnmarshalText(b []byte) (err error) {
	*v, err = ParseSubType(string(b))
	return err
}

func (v *Role) UnmarshalText(b []byte) (err error) {
	*v, err = ParseRole(string(b))
	return err
}
