package hl7

import (
	"strings"
	"testing"
	"time"

	"github.com/medwire-labs/labsim/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func testBuilder() *Builder {
	return NewBuilder(NewControlIDSource(), WithClock(fixedClock))
}

func TestBuildAck(t *testing.T) {
	original, err := Parse([]byte(sampleORM))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ack := testBuilder().BuildAck(original)

	if got, _ := ack.Field("MSA", 1); got != AckCodeAccept {
		t.Errorf("MSA-1 = %q, want %q", got, AckCodeAccept)
	}
	// MSA-2 always echoes the original MSH-10.
	if got, _ := ack.Field("MSA", 2); got != "MSG1" {
		t.Errorf("MSA-2 = %q, want MSG1", got)
	}
	if got := ack.Type(); got != "ACK^O01" {
		t.Errorf("MSH-9 = %q, want ACK^O01", got)
	}
	// Sender and receiver are swapped relative to the original.
	if got, _ := ack.Field("MSH", 2); got != DeviceApp {
		t.Errorf("MSH-3 = %q, want %q", got, DeviceApp)
	}
	if got, _ := ack.Field("MSH", 4); got != "ORDER_SYSTEM" {
		t.Errorf("MSH-5 = %q, want ORDER_SYSTEM", got)
	}
	if got, _ := ack.Field("MSH", 6); got != "20250615103000" {
		t.Errorf("MSH-7 = %q, want 20250615103000", got)
	}
	if ack.ControlID() == "" || ack.ControlID() == "MSG1" {
		t.Errorf("ACK control ID %q must be fresh and non-empty", ack.ControlID())
	}
}

func TestBuildAckTriggerDerivation(t *testing.T) {
	tests := []struct {
		name     string
		msgType  string
		wantType string
	}{
		{"ORM order", "ORM^O01", "ACK^O01"},
		{"OML order", "OML^O21", "ACK^O21"},
		{"bare type", "ORM", "ACK^O01"},
		{"missing type", "", "ACK^O01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "MSH|^~\\&|A|B|||||" + tt.msgType + "|CTRL9|P|2.5"
			original, err := Parse([]byte(raw))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			ack := testBuilder().BuildAck(original)
			if got := ack.Type(); got != tt.wantType {
				t.Errorf("MSH-9 = %q, want %q", got, tt.wantType)
			}
			if got, _ := ack.Field("MSA", 2); got != "CTRL9" {
				t.Errorf("MSA-2 = %q, want CTRL9", got)
			}
		})
	}
}

func TestBuildORU(t *testing.T) {
	order := domain.Order{
		ControlID:        "MSG1",
		SendingApp:       "ORDER_SYSTEM",
		SendingFacility:  "HOSPITAL",
		PatientID:        "PAT42",
		PatientName:      "SMITH^JANE",
		PatientSex:       "F",
		EncounterID:      "ENC7",
		PlacerOrderID:    "ORD1",
		FillerOrderID:    "FIL1",
		OrderingProvider: "DR^WHO",
		TestCode:         "CBC",
		TestName:         "Complete Blood Count",
	}
	results := domain.ResultSet{
		PanelCode: "CBC",
		Results: []domain.Result{
			{Code: "WBC", Name: "White Blood Cell Count", LOINC: "6690-2", Value: 7.25, Unit: "10*9/L", ReferenceRange: "4.0-11.0"},
			{Code: "HGB", Name: "Hemoglobin", LOINC: "718-7", Value: 14.1, Unit: "g/dL", ReferenceRange: "12.0-17.0"},
		},
	}

	oru := testBuilder().BuildORU(order, results)

	if got := oru.Type(); got != "ORU^R01" {
		t.Errorf("MSH-9 = %q, want ORU^R01", got)
	}
	if got, _ := oru.Field("OBR", 2); got != "ORD1" {
		t.Errorf("OBR-2 = %q, want ORD1", got)
	}
	if got, _ := oru.Field("OBR", 4); got != "CBC^Complete Blood Count" {
		t.Errorf("OBR-4 = %q, want CBC^Complete Blood Count", got)
	}
	if got, _ := oru.Field("OBR", 16); got != "DR^WHO" {
		t.Errorf("OBR-16 = %q, want DR^WHO", got)
	}
	if got, _ := oru.Field("OBR", 25); got != "F" {
		t.Errorf("OBR-25 = %q, want F", got)
	}
	if got, _ := oru.Field("PID", 3); got != "PAT42" {
		t.Errorf("PID-3 = %q, want PAT42", got)
	}
	if got, _ := oru.Field("PV1", 19); got != "ENC7" {
		t.Errorf("PV1-19 = %q, want ENC7", got)
	}
	if got, _ := oru.Field("ORC", 1); got != "RE" {
		t.Errorf("ORC-1 = %q, want RE", got)
	}

	var obx []domain.Segment
	for _, s := range oru.Segments {
		if s.Type() == "OBX" {
			obx = append(obx, s)
		}
	}
	if len(obx) != 2 {
		t.Fatalf("OBX segment count = %d, want 2", len(obx))
	}
	if got, _ := obx[0].Field(3); got != "6690-2^White Blood Cell Count^LN" {
		t.Errorf("OBX-3 = %q", got)
	}
	if got, _ := obx[0].Field(5); got != "7.25" {
		t.Errorf("OBX-5 = %q, want 7.25", got)
	}
	if got, _ := obx[1].Field(5); got != "14.10" {
		t.Errorf("OBX-5 = %q, want 14.10", got)
	}
	if got, _ := obx[0].Field(7); got != "4.0-11.0" {
		t.Errorf("OBX-7 = %q, want 4.0-11.0", got)
	}
	// Abnormal flag stays blank: the simulator performs no interpretation.
	if got, _ := obx[0].Field(8); got != "" {
		t.Errorf("OBX-8 = %q, want blank", got)
	}
	if got, _ := obx[1].Field(1); got != "2" {
		t.Errorf("OBX-1 = %q, want 2", got)
	}
}

func TestBuildORUPlaceholders(t *testing.T) {
	oru := testBuilder().BuildORU(domain.Order{TestCode: "XYZ"}, domain.ResultSet{})

	if got, _ := oru.Field("PID", 3); got != DefaultPatientID {
		t.Errorf("PID-3 = %q, want %q", got, DefaultPatientID)
	}
	if got, _ := oru.Field("PID", 5); got != DefaultPatientName {
		t.Errorf("PID-5 = %q, want %q", got, DefaultPatientName)
	}
	if got, _ := oru.Field("OBR", 2); got != DefaultPlacerOrderID {
		t.Errorf("OBR-2 = %q, want %q", got, DefaultPlacerOrderID)
	}
	if got, _ := oru.Field("OBR", 3); !strings.HasPrefix(got, "FILLER") {
		t.Errorf("OBR-3 = %q, want generated FILLER id", got)
	}
	if _, ok := oru.Segment("PV1"); ok {
		t.Error("PV1 present without an encounter ID")
	}
}

func TestBuildORUEncodeReparse(t *testing.T) {
	oru := testBuilder().BuildORU(domain.Order{TestCode: "BMP"}, domain.ResultSet{
		Results: []domain.Result{{Code: "GLU", Name: "Glucose", Value: 99.5, Unit: "mg/dL", ReferenceRange: "70-140"}},
	})

	reparsed, err := Parse(oru.Encode())
	if err != nil {
		t.Fatalf("Parse(Encode()) error = %v", err)
	}
	if reparsed.Type() != "ORU^R01" {
		t.Errorf("reparsed type = %q, want ORU^R01", reparsed.Type())
	}
	if got, _ := reparsed.Field("OBX", 5); got != "99.50" {
		t.Errorf("reparsed OBX-5 = %q, want 99.50", got)
	}
}

func TestControlIDSourceUniqueness(t *testing.T) {
	ids := NewControlIDSource()

	const n = 200
	ch := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() { ch <- ids.Next() }()
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := <-ch
		if seen[id] {
			t.Fatalf("duplicate control ID %q", id)
		}
		seen[id] = true
	}
}
