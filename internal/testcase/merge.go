package testcase

// Merge combines an inline declaration with the record found in the definition
// store. Inline fields win field by field; Update always comes from the file
// record because the file decides whether an export is forced.
func Merge(inline, file Record) Record {
	out := file.Clone()
	in := inline.Clone()

	if in.ID != "" {
		out.ID = in.ID
	}
	if in.Project != "" {
		out.Project = in.Project
	}
	if in.Title != "" {
		out.Title = in.Title
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if len(in.TestSteps) > 0 {
		out.TestSteps = in.TestSteps
	}
	if len(in.LinkedWorkItems) > 0 {
		out.LinkedWorkItems = in.LinkedWorkItems
	}
	out.CustomFields = out.CustomFields.merge(in.CustomFields)
	out.Update = file.Update

	return out
}

// WithDefaults returns the record with its custom fields default-filled.
func (r Record) WithDefaults() Record {
	r.CustomFields = r.CustomFields.WithDefaults()
	return r
}
