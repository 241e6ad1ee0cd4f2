package hl7

import (
	"errors"
	"strings"
	"testing"
)

// PV1-19 (the encounter ID) sits at 0-based field index 19.
var sampleORM = "MSH|^~\\&|ORDER_SYSTEM|HOSPITAL|LAB_ANALYZER|DUMMY_LAB|20250101120000||ORM^O01|MSG1|P|2.5\r" +
	"PID|1||PAT42||SMITH^JANE||19800101|F|||1 MAIN ST||555-0100\r" +
	"PV1|1" + strings.Repeat("|", 18) + "ENC7\r" +
	"ORC|NW|ORD1|FIL1|||||||||DR^WHO\r" +
	"OBR|1|ORD1|FIL1|CBC^Complete Blood Count^L"

func TestParseRecoverFieldSeparator(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  byte
	}{
		{"pipe separator", "MSH|^~\\&|A|B|||||ORM^O01|M1|P|2.5", '|'},
		{"hash separator", "MSH#^~\\&#A#B#####ORM^O01#M1#P#2.5", '#'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if msg.FieldSep != tt.sep {
				t.Errorf("FieldSep = %q, want %q", msg.FieldSep, tt.sep)
			}
			if got, _ := msg.Field("MSH", 8); got != "ORM^O01" {
				t.Errorf("Field(MSH, 8) = %q, want ORM^O01", got)
			}
		})
	}
}

func TestParseSegmentsAndFields(t *testing.T) {
	msg, err := Parse([]byte(sampleORM))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(msg.Segments) != 5 {
		t.Fatalf("len(Segments) = %d, want 5", len(msg.Segments))
	}
	if msg.Type() != "ORM^O01" {
		t.Errorf("Type() = %q, want ORM^O01", msg.Type())
	}
	if msg.ControlID() != "MSG1" {
		t.Errorf("ControlID() = %q, want MSG1", msg.ControlID())
	}
	if got, _ := msg.Field("PID", 5); got != "SMITH^JANE" {
		t.Errorf("Field(PID, 5) = %q, want SMITH^JANE", got)
	}
	if got, _ := msg.Field("OBR", 4); got != "CBC^Complete Blood Count^L" {
		t.Errorf("Field(OBR, 4) = %q", got)
	}

	// Absent segment or field is not an error.
	if _, ok := msg.Field("ZZZ", 1); ok {
		t.Error("Field(ZZZ, 1) reported present for missing segment")
	}
	if _, ok := msg.Field("OBR", 40); ok {
		t.Error("Field(OBR, 40) reported present for missing field")
	}
}

func TestParseNewlineTolerance(t *testing.T) {
	raw := "MSH|^~\\&|A|B|||||ORM^O01|M1|P|2.5\r\nOBR|1|ORD9||BMP\n"
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, _ := msg.Field("OBR", 2); got != "ORD9" {
		t.Errorf("Field(OBR, 2) = %q, want ORD9", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty payload", "", ErrEmptyMessage},
		{"only separators", "\r\r", ErrEmptyMessage},
		{"first segment not MSH", "PID|1||X\rMSH|^~\\&|A|B", ErrNoHeader},
		{"MSH with no separator byte", "MSH", ErrNoHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponents(t *testing.T) {
	if got := Component("CBC^Complete Blood Count^L", 0); got != "CBC" {
		t.Errorf("Component(0) = %q, want CBC", got)
	}
	if got := Component("CBC^Complete Blood Count^L", 2); got != "L" {
		t.Errorf("Component(2) = %q, want L", got)
	}
	if got := Component("CBC", 5); got != "" {
		t.Errorf("Component(5) = %q, want empty", got)
	}
}

func TestExtractOrder(t *testing.T) {
	msg, err := Parse([]byte(sampleORM))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	order := ExtractOrder(msg)

	if order.ControlID != "MSG1" {
		t.Errorf("ControlID = %q, want MSG1", order.ControlID)
	}
	if order.TestCode != "CBC" || order.TestName != "Complete Blood Count" || order.TestSystem != "L" {
		t.Errorf("test = %q/%q/%q, want CBC/Complete Blood Count/L",
			order.TestCode, order.TestName, order.TestSystem)
	}
	if order.PlacerOrderID != "ORD1" {
		t.Errorf("PlacerOrderID = %q, want ORD1", order.PlacerOrderID)
	}
	if order.FillerOrderID != "FIL1" {
		t.Errorf("FillerOrderID = %q, want FIL1", order.FillerOrderID)
	}
	if order.OrderingProvider != "DR^WHO" {
		t.Errorf("OrderingProvider = %q, want DR^WHO", order.OrderingProvider)
	}
	if order.EncounterID != "ENC7" {
		t.Errorf("EncounterID = %q, want ENC7", order.EncounterID)
	}
	if order.PatientID != "PAT42" || order.PatientName != "SMITH^JANE" {
		t.Errorf("patient = %q/%q, want PAT42/SMITH^JANE", order.PatientID, order.PatientName)
	}
}

func TestExtractOrderPlaceholders(t *testing.T) {
	msg, err := Parse([]byte("MSH|^~\\&|||||||ORM^O01|M2|P|2.5"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	order := ExtractOrder(msg)

	if order.SendingApp != DefaultSendingApp {
		t.Errorf("SendingApp = %q, want %q", order.SendingApp, DefaultSendingApp)
	}
	if order.PatientID != DefaultPatientID {
		t.Errorf("PatientID = %q, want %q", order.PatientID, DefaultPatientID)
	}
	if order.PatientName != DefaultPatientName {
		t.Errorf("PatientName = %q, want %q", order.PatientName, DefaultPatientName)
	}
	if order.PlacerOrderID != DefaultPlacerOrderID {
		t.Errorf("PlacerOrderID = %q, want %q", order.PlacerOrderID, DefaultPlacerOrderID)
	}
	if order.TestCode != "" {
		t.Errorf("TestCode = %q, want empty", order.TestCode)
	}
}

func TestExtractOrderOBRFallback(t *testing.T) {
	raw := "MSH|^~\\&|A|B|||||ORM^O01|M3|P|2.5\rOBR|1|PL-OBR|FL-OBR|BMP^Basic Metabolic Panel"
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	order := ExtractOrder(msg)

	if order.PlacerOrderID != "PL-OBR" {
		t.Errorf("PlacerOrderID = %q, want PL-OBR", order.PlacerOrderID)
	}
	if order.FillerOrderID != "FL-OBR" {
		t.Errorf("FillerOrderID = %q, want FL-OBR", order.FillerOrderID)
	}
}
