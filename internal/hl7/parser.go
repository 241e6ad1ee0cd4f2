// Package hl7 implements the pipe-and-hat HL7 v2 message layer: parsing
// inbound payloads into [domain.Message] values and building outbound ACK
// and ORU^R01 messages.
//
// Only the structure needed to extract order identifiers and test codes is
// understood; this is deliberately not a conformant HL7 implementation.
package hl7

import (
	"errors"
	"strings"

	"github.com/medwire-labs/labsim/internal/domain"
)

// ComponentSeparator splits components within a field (e.g. "CBC^Blood Count").
const ComponentSeparator = "^"

// Parse errors. Both are connection-fatal for the inbound handler: without
// a leading MSH segment the field separator cannot be determined and the
// rest of the payload cannot be interpreted.
var (
	// ErrEmptyMessage is returned for a payload with no segments.
	ErrEmptyMessage = errors.New("hl7: message has no segments")

	// ErrNoHeader is returned when the first segment is not MSH.
	ErrNoHeader = errors.New("hl7: first segment is not MSH")
)

// Parse splits a decoded MLLP payload into segments and fields.
//
// Segments are terminated by carriage returns (LF and CRLF are tolerated).
// The field separator is read from the MSH segment itself: the byte
// immediately following "MSH". Field access on the result is 0-based with
// the segment type at index 0, so for MSH the encoding characters sit at
// index 1 and the message type at index 8.
func Parse(raw []byte) (*domain.Message, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", domain.SegmentSeparator)
	text = strings.ReplaceAll(text, "\n", domain.SegmentSeparator)

	var lines []string
	for _, l := range strings.Split(text, domain.SegmentSeparator) {
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyMessage
	}
	if !strings.HasPrefix(lines[0], "MSH") || len(lines[0]) < 4 {
		return nil, ErrNoHeader
	}

	sep := lines[0][3]
	msg := &domain.Message{
		FieldSep: sep,
		Segments: make([]domain.Segment, 0, len(lines)),
	}
	for _, l := range lines {
		msg.Segments = append(msg.Segments, domain.Segment{
			Fields: strings.Split(l, string(sep)),
		})
	}
	return msg, nil
}

// Components splits a field value on the component separator.
func Components(field string) []string {
	return strings.Split(field, ComponentSeparator)
}

// Component returns the i-th (0-based) component of a field, or "".
func Component(field string, i int) string {
	parts := Components(field)
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}
