package domain

// Result is a single synthesized observation component.
type Result struct {
	// Code is the short component code (e.g. "WBC", "GLU").
	Code string

	// Name is the human-readable component name.
	Name string

	// LOINC is the LOINC code for the component, when known.
	LOINC string

	// Value is the synthesized numeric value, rounded to two decimals.
	Value float64

	// Unit is the unit of measure in HL7 notation (e.g. "10*9/L").
	Unit string

	// ReferenceRange is the plausible range the value was drawn from,
	// formatted as "low-high".
	ReferenceRange string
}

// ResultSet holds the synthesized panel for one order. It is generated once
// per order, consumed immediately by the message builder, and not persisted.
// Results keep the panel table's component order so OBX sequence numbers
// are stable.
type ResultSet struct {
	// PanelCode is the test code the set was synthesized for.
	PanelCode string

	Results []Result
}

// Codes returns the component codes in panel order.
func (rs ResultSet) Codes() []string {
	codes := make([]string, len(rs.Results))
	for i, r := range rs.Results {
		codes[i] = r.Code
	}
	return codes
}
