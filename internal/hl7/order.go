package hl7

import "github.com/medwire-labs/labsim/internal/domain"

// Placeholders used when the inbound order omits optional fields. The
// simulator always produces a result, so missing demographics degrade to
// documented defaults instead of failing the order.
const (
	DefaultSendingApp      = "ORDER_SYSTEM"
	DefaultSendingFacility = "HOSPITAL"
	DefaultPatientID       = "UNKNOWN"
	DefaultPatientName     = "DOE^JOHN"
	DefaultPatientSex      = "U"
	DefaultPlacerOrderID   = "ORDER123"
)

// ExtractOrder builds the logical order view from a parsed ORM message.
//
// Extraction never fails: a structurally valid message with missing order
// detail still yields an Order, with placeholders where the protocol
// requires a value to echo. An absent test code resolves to the generic
// panel downstream.
func ExtractOrder(msg *domain.Message) domain.Order {
	o := domain.Order{
		ControlID:       msg.ControlID(),
		MessageType:     msg.Type(),
		SendingApp:      msg.FieldOr("MSH", 2, DefaultSendingApp),
		SendingFacility: msg.FieldOr("MSH", 3, DefaultSendingFacility),

		PatientID:      msg.FieldOr("PID", 3, DefaultPatientID),
		PatientName:    msg.FieldOr("PID", 5, DefaultPatientName),
		PatientDOB:     msg.FieldOr("PID", 7, ""),
		PatientSex:     msg.FieldOr("PID", 8, DefaultPatientSex),
		PatientAddress: msg.FieldOr("PID", 11, ""),
		PatientPhone:   msg.FieldOr("PID", 13, ""),

		EncounterID: msg.FieldOr("PV1", 19, ""),
	}

	// Order identifiers: ORC wins, OBR is the fallback.
	o.PlacerOrderID = firstNonEmpty(
		msg.FieldOr("ORC", 2, ""),
		msg.FieldOr("OBR", 2, ""),
		DefaultPlacerOrderID,
	)
	o.FillerOrderID = firstNonEmpty(
		msg.FieldOr("ORC", 3, ""),
		msg.FieldOr("OBR", 3, ""),
	)
	o.OrderingProvider = firstNonEmpty(
		msg.FieldOr("ORC", 12, ""),
		msg.FieldOr("OBR", 16, ""),
	)

	// OBR-4 carries code^name^system for the requested panel.
	universal, _ := msg.Field("OBR", 4)
	o.TestCode = Component(universal, 0)
	o.TestName = Component(universal, 1)
	o.TestSystem = Component(universal, 2)

	return o
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
