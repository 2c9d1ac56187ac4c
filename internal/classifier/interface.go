package classifier

import "autoremedy/internal/model"

// Classifier turns unstructured error text into ordered, deduplicated findings.
type Classifier interface {
	// Classify never fails: text without a known signature yields an empty slice.
	Classify(text string) []model.ErrorFinding
}
