package hl7

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// ControlIDSource issues message control IDs that are unique for the life
// of the process. A per-process random prefix keeps IDs from colliding
// across restarts; the atomic sequence keeps them unique under concurrent
// use by multiple connection handlers.
type ControlIDSource struct {
	prefix string
	seq    atomic.Uint64
}

// NewControlIDSource creates a source with a fresh random prefix.
func NewControlIDSource() *ControlIDSource {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &ControlIDSource{prefix: strings.ToUpper(raw[:8])}
}

// Next returns the next control ID, e.g. "3FA2B4C90042".
func (s *ControlIDSource) Next() string {
	return fmt.Sprintf("%s%04d", s.prefix, s.seq.Add(1))
}
