package export

import "encoding/xml"

// StepColumnID is the column every step parameter is placed in.
const StepColumnID = "step"

// LookupMethodID tells the importer that linked work items are referenced by id.
const LookupMethodID = "id"

// Document is one project's batch of test cases.
type Document struct {
	XMLName    xml.Name           `xml:"testcases"`
	ProjectID  string             `xml:"project-id,attr"`
	Properties ResponseProperties `xml:"response-properties"`
	TestCases  []TestCase         `xml:"testcase"`
}

// ResponseProperties carries the selector identifying where the batch came from.
type ResponseProperties struct {
	Properties []ResponseProperty `xml:"response-property"`
}

// ResponseProperty is one name/value pair of the selector.
type ResponseProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// TestCase is the exported form of one record.
type TestCase struct {
	ID              string           `xml:"id,attr,omitempty"`
	Title           string           `xml:"title"`
	Description     string           `xml:"description"`
	TestSteps       TestSteps        `xml:"test-steps"`
	CustomFields    *CustomFields    `xml:"custom-fields,omitempty"`
	LinkedWorkItems *LinkedWorkItems `xml:"linked-work-items,omitempty"`
}

// TestSteps holds the ordered steps.
type TestSteps struct {
	Steps []TestStep `xml:"test-step"`
}

// TestStep holds one step column.
type TestStep struct {
	Column TestStepColumn `xml:"test-step-column"`
}

// TestStepColumn holds the parameters of a step.
type TestStepColumn struct {
	ID         string      `xml:"id,attr"`
	Parameters []Parameter `xml:"parameter"`
}

// Parameter is one named step parameter.
type Parameter struct {
	Name  string `xml:"name,attr"`
	Scope string `xml:"scope,attr"`
}

// CustomFields holds the classification fields.
type CustomFields struct {
	Fields []CustomField `xml:"custom-field"`
}

// CustomField is one classification field.
type CustomField struct {
	ID      string `xml:"id,attr"`
	Content string `xml:"content,attr"`
}

// LinkedWorkItems holds links to other work items.
type LinkedWorkItems struct {
	Items []LinkedWorkItem `xml:"linked-work-item"`
}

// LinkedWorkItem links the test case to another work item.
type LinkedWorkItem struct {
	WorkItemID   string `xml:"workitem-id,attr"`
	RoleID       string `xml:"role-id,attr"`
	LookupMethod string `xml:"lookup-method,attr"`
	Suspect      bool   `xml:"suspect,attr,omitempty"`
}
