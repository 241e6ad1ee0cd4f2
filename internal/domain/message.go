package domain

import "strings"

// SegmentSeparator terminates each segment in an encoded HL7 message.
const SegmentSeparator = "\r"

// Segment is a single HL7 segment: an ordered sequence of fields where
// Fields[0] is the 3-character segment type (e.g. "MSH", "PID").
type Segment struct {
	Fields []string
}

// Type returns the segment type, or "" for a segment with no fields.
func (s Segment) Type() string {
	if len(s.Fields) == 0 {
		return ""
	}
	return s.Fields[0]
}

// Field returns the field at the given 0-based index. Absent fields are
// reported as ("", false), not as an error: HL7 fields are frequently
// optional and trailing empty fields are routinely omitted on the wire.
func (s Segment) Field(i int) (string, bool) {
	if i < 0 || i >= len(s.Fields) {
		return "", false
	}
	return s.Fields[i], true
}

// Message is a parsed HL7 v2 message. The first segment is always MSH and
// defines the field separator used to encode the rest of the message.
// Messages are built fresh per exchange and never mutated after construction.
type Message struct {
	// FieldSep is the field separator declared by MSH (the byte immediately
	// following "MSH"). Defaults to '|' for built messages.
	FieldSep byte

	Segments []Segment
}

// Segment returns the first segment with the given type.
// If a segment type repeats, the first occurrence wins.
func (m *Message) Segment(typ string) (Segment, bool) {
	for _, s := range m.Segments {
		if s.Type() == typ {
			return s, true
		}
	}
	return Segment{}, false
}

// Field returns field i (0-based) of the first segment with the given type.
// Returns ("", false) when the segment or field is absent.
func (m *Message) Field(typ string, i int) (string, bool) {
	s, ok := m.Segment(typ)
	if !ok {
		return "", false
	}
	return s.Field(i)
}

// FieldOr returns field i of the named segment, or def when absent or empty.
func (m *Message) FieldOr(typ string, i int, def string) string {
	v, ok := m.Field(typ, i)
	if !ok || v == "" {
		return def
	}
	return v
}

// Type returns the message type from MSH-9 (e.g. "ORM^O01"), or "".
func (m *Message) Type() string {
	v, _ := m.Field("MSH", 8)
	return v
}

// ControlID returns the message control ID from MSH-10, or "".
func (m *Message) ControlID() string {
	v, _ := m.Field("MSH", 9)
	return v
}

// Encode serializes the message: fields joined by the field separator,
// segments joined by carriage returns. The result carries no MLLP framing.
func (m *Message) Encode() []byte {
	sep := m.FieldSep
	if sep == 0 {
		sep = '|'
	}
	lines := make([]string, 0, len(m.Segments))
	for _, s := range m.Segments {
		lines = append(lines, strings.Join(s.Fields, string(sep)))
	}
	return []byte(strings.Join(lines, SegmentSeparator))
}

// AddSegment appends a segment built from the given fields.
func (m *Message) AddSegment(fields ...string) {
	m.Segments = append(m.Segments, Segment{Fields: fields})
}
