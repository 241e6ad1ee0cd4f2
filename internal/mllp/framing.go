// Package mllp implements the Minimal Lower Layer Protocol byte envelope
// used to carry HL7 v2 messages over TCP.
//
// A frame is `0x0B <payload> 0x1C 0x0D`. The codec has no knowledge of HL7
// semantics; it moves opaque payload bytes. Decoding tolerates arbitrary
// chunking of the underlying stream: the terminator is recognized even when
// its two bytes arrive in separate reads.
package mllp

import (
	"bufio"
	"errors"
	"io"
)

// MLLP envelope bytes.
const (
	StartByte      = 0x0B // vertical tab, start of block
	EndByte        = 0x1C // file separator, first terminator byte
	CarriageReturn = 0x0D // second terminator byte
)

// Framing errors. All of them are connection-fatal: the stream is out of
// sync and the caller must abandon the connection rather than resynchronize.
var (
	// ErrMissingStart is returned when a frame does not open with the
	// start-of-block byte.
	ErrMissingStart = errors.New("mllp: frame does not begin with start byte")

	// ErrNestedStart is returned when a second start byte appears before
	// the open frame is terminated.
	ErrNestedStart = errors.New("mllp: start byte inside open frame")

	// ErrTruncatedFrame is returned when the stream closes mid-frame.
	ErrTruncatedFrame = errors.New("mllp: stream closed before end of frame")
)

// Encode wraps payload in the MLLP envelope. The payload is copied; the
// input slice is not retained.
func Encode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+3)
	out = append(out, StartByte)
	out = append(out, payload...)
	return append(out, EndByte, CarriageReturn)
}

// Reader decodes successive MLLP frames from a byte stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader returns a Reader decoding frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadFrame reads one complete frame and returns its payload.
//
// A clean connection close between frames is reported as io.EOF. A close
// after the frame has opened is ErrTruncatedFrame. The first byte of a
// frame must be the start byte (ErrMissingStart otherwise), and a second
// start byte before the terminator is ErrNestedStart.
func (r *Reader) ReadFrame() ([]byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if b != StartByte {
		return nil, ErrMissingStart
	}

	var payload []byte
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrTruncatedFrame
			}
			return nil, err
		}
		switch {
		case b == StartByte:
			return nil, ErrNestedStart
		case b == CarriageReturn && len(payload) > 0 && payload[len(payload)-1] == EndByte:
			return payload[:len(payload)-1], nil
		default:
			payload = append(payload, b)
		}
	}
}
