package ports

import "github.com/medwire-labs/labsim/internal/domain"

// Synthesizer produces a result panel for a requested test code.
// Implementations never fail: an unrecognized code yields a generic result.
type Synthesizer interface {
	Synthesize(testCode string) domain.ResultSet
}
