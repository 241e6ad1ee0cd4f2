package domain

// Order is the logical view of an inbound lab order (ORM^O01), extracted
// from the parsed HL7 message. Every field is a plain text value; fields
// absent from the order carry the documented placeholder or are empty.
type Order struct {
	// ControlID is the inbound message control ID (MSH-10), echoed in the
	// acknowledgment and used to derive the result message identity.
	ControlID string

	// MessageType is the inbound MSH-9 value (e.g. "ORM^O01").
	MessageType string

	// SendingApp and SendingFacility identify the order originator (MSH-3/4);
	// result messages are addressed back to them.
	SendingApp      string
	SendingFacility string

	// Patient demographics echoed from PID into the result message.
	PatientID      string
	PatientName    string
	PatientDOB     string
	PatientSex     string
	PatientAddress string
	PatientPhone   string

	// EncounterID is the visit number from PV1-19, when present.
	EncounterID string

	// PlacerOrderID and FillerOrderID identify the order (ORC-2/OBR-2 and
	// ORC-3/OBR-3 respectively, first non-empty wins).
	PlacerOrderID string
	FillerOrderID string

	// OrderingProvider is ORC-12, falling back to OBR-16.
	OrderingProvider string

	// TestCode, TestName and TestSystem are the components of OBR-4
	// identifying the requested panel (e.g. "CBC", "BMP", a LOINC code).
	TestCode   string
	TestName   string
	TestSystem string
}
