package usecase

import "github.com/fadilmartias/cert-verifier/internal/model"

// Compare checks the submitted certificate against the issuer's copy. Only
// name and overall marks take part; both must be present on both sides and
// equal as strings.
func Compare(original, fetched model.ParsedFields) model.Verdict {
	if equalPresent(original.Name, fetched.Name) && equalPresent(original.OverallMarks, fetched.OverallMarks) {
		return model.Verified
	}
	return model.NotVerified
}

func equalPresent(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
