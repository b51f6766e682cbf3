package model

// Interpretation describes how directly a fact was stated in source content.
type Interpretation string

const (
	InterpretationExplicit Interpretation = "explicit"
	InterpretationImplicit Interpretation = "implicit"
	InterpretationInferred Interpretation = "inferred"
	InterpretationMissing  Interpretation = "missing"
)

// ExtractedField is a confidence-annotated scalar value pulled from source
// content. Interpretation is "missing" iff the field was not found, in which
// case Value is nil and Confidence is 0.
type ExtractedField struct {
	Value          *string        `json:"value"`
	Confidence     float64        `json:"confidence"`
	SourceQuote    *string        `json:"source_quote,omitempty"`
	Interpretation Interpretation `json:"interpretation"`
}

// ExtractedNumericField is the numeric variant of ExtractedField. ValueRange,
// when present, is a (low, high) pair; range ordering is trusted from the
// model, not enforced.
type ExtractedNumericField struct {
	Value          *float64       `json:"value"`
	ValueRange     *[2]float64    `json:"value_range,omitempty"`
	Confidence     float64        `json:"confidence"`
	SourceQuote    *string        `json:"source_quote,omitempty"`
	Interpretation Interpretation `json:"interpretation"`
}

// MissingField returns the default not-found scalar field.
func MissingField() ExtractedField {
	return ExtractedField{Interpretation: InterpretationMissing}
}

// MissingNumericField returns the default not-found numeric field.
func MissingNumericField() ExtractedNumericField {
	return ExtractedNumericField{Interpretation: InterpretationMissing}
}

// Present reports whether the field carries a found value.
func (f ExtractedField) Present() bool {
	return f.Interpretation != InterpretationMissing && f.Value != nil
}

// Present reports whether the field carries a found value or range.
func (f ExtractedNumericField) Present() bool {
	return f.Interpretation != InterpretationMissing && (f.Value != nil || f.ValueRange != nil)
}
