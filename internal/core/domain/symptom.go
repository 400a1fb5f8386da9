package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinSeverity = 0
	MaxSeverity = 10
	MinStress   = 1
	MaxStress   = 10
)

type Symptom string

const (
	SymptomItching          Symptom = "itching"
	SymptomFlaking          Symptom = "flaking"
	SymptomRedness          Symptom = "redness"
	SymptomOiliness         Symptom = "oiliness"
	SymptomTightness        Symptom = "tightness"
	SymptomTenderness       Symptom = "tenderness"
	SymptomHypopigmentation Symptom = "hypopigmentation"
	SymptomHairThinning     Symptom = "hairThinning"
	SymptomDryness          Symptom = "dryness"
)

var allSymptoms = [...]Symptom{
	SymptomItching,
	SymptomFlaking,
	SymptomRedness,
	SymptomOiliness,
	SymptomTightness,
	SymptomTenderness,
	SymptomHypopigmentation,
	SymptomHairThinning,
	SymptomDryness,
}

// AllSymptoms returns the tracked symptoms in canonical report order.
// The returned slice is a copy.
func AllSymptoms() []Symptom {
	out := make([]Symptom, len(allSymptoms))
	copy(out, allSymptoms[:])
	return out
}

func (s Symptom) IsValid() bool {
	for _, known := range allSymptoms {
		if s == known {
			return true
		}
	}
	return false
}

// Label upper-cases the first letter only: hairThinning -> HairThinning.
func (s Symptom) Label() string {
	r, size := utf8.DecodeRuneInString(string(s))
	if r == utf8.RuneError {
		return string(s)
	}
	return string(unicode.ToUpper(r)) + string(s)[size:]
}

// Symptoms maps a symptom to its 0-10 severity. A missing key means 0.
type Symptoms map[Symptom]int

func (s Symptoms) Severity(sym Symptom) int {
	if s == nil {
		return 0
	}
	return s[sym]
}

// Normalized returns a map holding every canonical symptom.
func (s Symptoms) Normalized() Symptoms {
	out := make(Symptoms, len(allSymptoms))
	for _, sym := range allSymptoms {
		out[sym] = s.Severity(sym)
	}
	return out
}

func (s Symptoms) Validate() error {
	for sym, v := range s {
		if !sym.IsValid() {
			return &FieldError{Field: "symptoms." + string(sym), Reason: "unknown symptom"}
		}
		if v < MinSeverity || v > MaxSeverity {
			return &FieldError{Field: "symptoms." + string(sym), Reason: "must be between 0 and 10"}
		}
	}
	return nil
}

func ParseSymptom(raw string) (Symptom, bool) {
	s := Symptom(strings.TrimSpace(raw))
	return s, s.IsValid()
}
