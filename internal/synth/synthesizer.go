// Package synth generates plausible numeric values for ordered lab panels.
//
// The simulator's contract is permissive: any test code yields a result set.
// Known panels draw each component uniformly within its documented range;
// an unrecognized code falls back to a single generic normal value rather
// than failing the order.
package synth

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/medwire-labs/labsim/internal/domain"
)

// component describes one measurable of a panel: its plausible numeric
// range, unit, and the reference interval reported alongside the value.
type component struct {
	code  string
	name  string
	loinc string
	unit  string
	low   float64
	high  float64
	ref   string
}

// panels maps test panel codes to their components.
var panels = map[string][]component{
	"CBC": {
		{code: "WBC", name: "White Blood Cell Count", loinc: "6690-2", unit: "10*9/L", low: 4.0, high: 11.0, ref: "4.0-11.0"},
		{code: "RBC", name: "Red Blood Cell Count", loinc: "789-8", unit: "10*12/L", low: 4.2, high: 5.9, ref: "4.2-5.9"},
		{code: "HGB", name: "Hemoglobin", loinc: "718-7", unit: "g/dL", low: 12.0, high: 17.0, ref: "12.0-17.0"},
		{code: "HCT", name: "Hematocrit", loinc: "4544-3", unit: "%", low: 36.0, high: 52.0, ref: "36-52"},
	},
	"BMP": {
		{code: "GLU", name: "Glucose", loinc: "2345-7", unit: "mg/dL", low: 70.0, high: 140.0, ref: "70-140"},
		{code: "BUN", name: "Blood Urea Nitrogen", loinc: "3094-0", unit: "mg/dL", low: 7.0, high: 25.0, ref: "7-25"},
		{code: "CRE", name: "Creatinine", loinc: "2160-0", unit: "mg/dL", low: 0.6, high: 1.3, ref: "0.6-1.3"},
		{code: "NA", name: "Sodium", loinc: "2951-2", unit: "mmol/L", low: 135.0, high: 145.0, ref: "135-145"},
		{code: "K", name: "Potassium", loinc: "2823-3", unit: "mmol/L", low: 3.5, high: 5.0, ref: "3.5-5.0"},
	},
	"GLUCOSE": {
		{code: "GLU", name: "Glucose", loinc: "1554-5", unit: "mg/dL", low: 70.0, high: 140.0, ref: "70-140"},
	},
}

// aliases covers orders that identify a panel by a coding-system identifier
// in OBR-4 instead of the local mnemonic.
var aliases = map[string]string{
	"1554-5":   "GLUCOSE", // LOINC glucose
	"26604007": "CBC",     // SNOMED complete blood count
}

// Synthesizer draws result values from an injectable random source, so
// tests can fix the seed and assert deterministic output.
type Synthesizer struct {
	// mu serializes draws: a *rand.Rand is not safe for concurrent use and
	// one synthesizer is shared by all connection handlers.
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Synthesizer seeded from the current time.
func New() *Synthesizer {
	return NewWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithSource creates a Synthesizer drawing from rng.
func NewWithSource(rng *rand.Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// Synthesize produces the result panel for a test code. Unrecognized codes
// (including an empty one) yield a single generic normal result; the
// returned set is never empty.
func (s *Synthesizer) Synthesize(testCode string) domain.ResultSet {
	code := strings.TrimSpace(testCode)
	lookup := code
	if canonical, ok := aliases[lookup]; ok {
		lookup = canonical
	}

	components, ok := panels[lookup]
	if !ok {
		components = genericPanel(code)
	}

	set := domain.ResultSet{
		PanelCode: code,
		Results:   make([]domain.Result, 0, len(components)),
	}
	for _, c := range components {
		set.Results = append(set.Results, domain.Result{
			Code:           c.code,
			Name:           c.name,
			LOINC:          c.loinc,
			Value:          s.draw(c.low, c.high),
			Unit:           c.unit,
			ReferenceRange: c.ref,
		})
	}
	return set
}

// draw returns a uniform value in [low, high] rounded to two decimals.
func (s *Synthesizer) draw(low, high float64) float64 {
	s.mu.Lock()
	v := low + s.rng.Float64()*(high-low)
	s.mu.Unlock()
	return math.Round(v*100) / 100
}

// genericPanel is the fallback for unknown test codes.
func genericPanel(code string) []component {
	if code == "" {
		code = "RESULT"
	}
	return []component{
		{code: strings.ToUpper(code), name: "Generic Result", unit: "U/L", low: 10.0, high: 90.0, ref: "10-90"},
	}
}
