package model

// Confidence tells whether a finding carries an extracted token.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceHeuristic Confidence = "heuristic"
)

// ErrorFinding is a structured extraction from unstructured error text.
type ErrorFinding struct {
	SignatureID     string     `json:"signature_id"`
	EvidenceSnippet string     `json:"evidence"`
	ExtractedToken  string     `json:"token,omitempty"`
	Confidence      Confidence `json:"confidence"`
}

// Key identifies a finding for deduplication.
func (f ErrorFinding) Key() string {
	return f.SignatureID + "\x00" + f.ExtractedToken
}
