package testcase

// CustomFields holds the enumerated classification attributes of a test case.
type CustomFields struct {
	Importance Importance `yaml:"importance,omitempty" json:"importance,omitempty"`
	Automation Automation `yaml:"automation,omitempty" json:"automation,omitempty"`
	Level      Level      `yaml:"caselevel,omitempty" json:"caselevel,omitempty"`
	PosNeg     PosNeg     `yaml:"caseposneg,omitempty" json:"caseposneg,omitempty"`
	Component  string     `yaml:"casecomponent,omitempty" json:"casecomponent,omitempty"`
	TestType   TestType   `yaml:"testtype,omitempty" json:"testtype,omitempty"`
	Subtype1   SubType    `yaml:"subtype1,omitempty" json:"subtype1,omitempty"`
	Subtype2   SubType    `yaml:"subtype2,omitempty" json:"subtype2,omitempty"`
	Tags       string     `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Defaults for the recognized custom fields.
const (
	DefaultImportance = ImportanceMedium
	DefaultAutomation = AutomationAutomated
	DefaultLevel      = LevelComponent
	DefaultPosNeg     = PosNegPositive
	DefaultTestType   = TestTypeFunctional
	DefaultSubType    = SubTypeEmpty
)

// WithDefaults returns a copy where every recognized field that is empty holds
// its default. Values that are already set are never replaced.
func (c CustomFields) WithDefaults() CustomFields {
	if c.Importance == "" {
		c.Importance = DefaultImportance
	}
	if c.Automation == "" {
		c.Automation = DefaultAutomation
	}
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.PosNeg == "" {
		c.PosNeg = DefaultPosNeg
	}
	if c.TestType == "" {
		c.TestType = DefaultTestType
	}
	if c.Subtype1 == "" {
		c.Subtype1 = DefaultSubType
	}
	if c.Subtype2 == "" {
		c.Subtype2 = DefaultSubType
	}
	return c
}

// Field is one custom field as it appears in the export document.
type Field struct {
	ID      string
	Content string
}

// Fields lists the non-empty custom fields in a fixed order using the remote
// system's field identifiers.
func (c CustomFields) Fields() []Field {
	all := []Field{
		{ID: "caseimportance", Content: string(c.Importance)},
		{ID: "caseautomation", Content: string(c.Automation)},
		{ID: "caselevel", Content: string(c.Level)},
		{ID: "caseposneg", Content: string(c.PosNeg)},
		{ID: "casecomponent", Content: c.Component},
		{ID: "testtype", Content: string(c.TestType)},
		{ID: "subtype1", Content: string(c.Subtype1)},
		{ID: "subtype2", Content: string(c.Subtype2)},
		{ID: "tags", Content: c.Tags},
	}
	fields := all[:0]
	for _, f := range all {
		if f.Content != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// merge overlays the non-empty fields of over onto c.
func (c CustomFields) merge(over CustomFields) CustomFields {
	if over.Importance != "" {
		c.Importance = over.Importance
	}
	if over.Automation != "" {
		c.Automation = over.Automation
	}
	if over.Level != "" {
		c.Level = over.Level
	}
	if over.PosNeg != "" {
		c.PosNeg = over.PosNeg
	}
	if over.Component != "" {
		c.Component = over.Component
	}
	if over.TestType != "" {
		c.TestType = over.TestType
	}
	if over.Subtype1 != "" {
		c.Subtype1 = over.Subtype1
	}
	if over.Subtype2 != "" {
		c.Subtype2 = over.Subtype2
	}
	if over.Tags != "" {
		c.Tags = over.Tags
	}
	return c
}
