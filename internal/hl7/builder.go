package hl7

import (
	"strconv"
	"strings"
	"time"

	"github.com/medwire-labs/labsim/internal/domain"
)

// TimestampLayout is the HL7 DTM format used in MSH-7, ORC-9 and OBX-14.
const TimestampLayout = "20060102150405"

// Identity the simulated device reports in MSH-3/4 of outbound messages.
const (
	DeviceApp      = "LAB_ANALYZER"
	DeviceFacility = "DUMMY_LAB"
)

// AckCodeAccept is the MSA-1 application-accept code.
const AckCodeAccept = "AA"

// Builder constructs outbound ACK and ORU^R01 messages from templates plus
// computed fields (timestamps, control IDs, echoed identifiers).
type Builder struct {
	ids      *ControlIDSource
	now      func() time.Time
	app      string
	facility string
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithClock injects the time source. Tests use a fixed clock.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithIdentity overrides the sending application and facility.
func WithIdentity(app, facility string) BuilderOption {
	return func(b *Builder) {
		b.app = app
		b.facility = facility
	}
}

// NewBuilder creates a Builder drawing control IDs from ids.
func NewBuilder(ids *ControlIDSource, opts ...BuilderOption) *Builder {
	b := &Builder{
		ids:      ids,
		now:      time.Now,
		app:      DeviceApp,
		facility: DeviceFacility,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildAck constructs the application-accept acknowledgment for a parsed
// inbound message: a fresh MSH with sender and receiver swapped relative to
// the original, and an MSA echoing the original control ID. The trigger
// event is taken from the inbound MSH-9 (ORM^O01 acknowledges as ACK^O01).
func (b *Builder) BuildAck(original *domain.Message) *domain.Message {
	trigger := Component(original.Type(), 1)
	if trigger == "" {
		trigger = "O01"
	}

	msg := &domain.Message{FieldSep: '|'}
	msg.AddSegment(b.header(
		original.FieldOr("MSH", 2, DefaultSendingApp),
		original.FieldOr("MSH", 3, DefaultSendingFacility),
		"ACK^"+trigger,
		b.ids.Next(),
	)...)
	msg.AddSegment("MSA", AckCodeAccept, original.ControlID())
	return msg
}

// BuildORU constructs the ORU^R01 result message for an order: MSH addressed
// back to the originator, PID echoing the patient demographics (or their
// placeholders), optional PV1 with the encounter ID, ORC, OBR echoing the
// order identifiers and test code, and one OBX per synthesized component.
// The OBX abnormal flag is left blank: no clinical interpretation is done.
func (b *Builder) BuildORU(order domain.Order, results domain.ResultSet) *domain.Message {
	ts := b.now().Format(TimestampLayout)
	ctrl := b.ids.Next()

	filler := order.FillerOrderID
	if filler == "" {
		filler = "FILLER" + ctrl[len(ctrl)-4:]
	}
	placer := order.PlacerOrderID
	if placer == "" {
		placer = DefaultPlacerOrderID
	}

	msg := &domain.Message{FieldSep: '|'}
	msg.AddSegment(b.header(
		nonEmpty(order.SendingApp, DefaultSendingApp),
		nonEmpty(order.SendingFacility, DefaultSendingFacility),
		"ORU^R01",
		ctrl,
	)...)

	pid := emptySegment("PID", 14)
	pid[1] = "1"
	pid[3] = nonEmpty(order.PatientID, DefaultPatientID)
	pid[5] = nonEmpty(order.PatientName, DefaultPatientName)
	pid[7] = order.PatientDOB
	pid[8] = nonEmpty(order.PatientSex, DefaultPatientSex)
	pid[11] = order.PatientAddress
	pid[13] = order.PatientPhone
	msg.AddSegment(pid...)

	if order.EncounterID != "" {
		pv1 := emptySegment("PV1", 20)
		pv1[1] = "1"
		pv1[19] = order.EncounterID
		msg.AddSegment(pv1...)
	}

	orc := emptySegment("ORC", 13)
	orc[1] = "RE"
	orc[2] = placer
	orc[3] = filler
	orc[5] = "CM"
	orc[9] = ts
	orc[12] = order.OrderingProvider
	msg.AddSegment(orc...)

	obr := emptySegment("OBR", 26)
	obr[1] = "1"
	obr[2] = placer
	obr[3] = filler
	obr[4] = coded(order.TestCode, order.TestName, order.TestSystem)
	obr[7] = ts
	obr[14] = ts
	obr[16] = order.OrderingProvider
	obr[25] = "F"
	msg.AddSegment(obr...)

	for i, r := range results.Results {
		obx := emptySegment("OBX", 15)
		obx[1] = strconv.Itoa(i + 1)
		obx[2] = "NM"
		if r.LOINC != "" {
			obx[3] = coded(r.LOINC, r.Name, "LN")
		} else {
			obx[3] = coded(r.Code, r.Name, "")
		}
		obx[5] = strconv.FormatFloat(r.Value, 'f', 2, 64)
		obx[6] = r.Unit
		obx[7] = r.ReferenceRange
		obx[11] = "F"
		obx[14] = ts
		msg.AddSegment(obx...)
	}

	return msg
}

// header builds the outbound MSH field list.
func (b *Builder) header(receivingApp, receivingFacility, messageType, controlID string) []string {
	return []string{
		"MSH", `^~\&`,
		b.app, b.facility,
		receivingApp, receivingFacility,
		b.now().Format(TimestampLayout), "",
		messageType, controlID,
		"P", "2.5",
	}
}

// emptySegment allocates a segment of n fields with the type at index 0.
func emptySegment(typ string, n int) []string {
	fields := make([]string, n)
	fields[0] = typ
	return fields
}

// coded joins code^name^system, dropping empty trailing components.
func coded(code, name, system string) string {
	parts := []string{code, name, system}
	last := len(parts)
	for last > 1 && parts[last-1] == "" {
		last--
	}
	return strings.Join(parts[:last], ComponentSeparator)
}

func nonEmpty(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
