package kitchen

import "strings"

// FailureKind classifies a provider error from its message text. The
// provider has no structured error-code contract, so classification is
// a case-insensitive substring heuristic over whatever text it emitted.
type FailureKind int

const (
	// FailureGeneric is any error the heuristics below do not match.
	FailureGeneric FailureKind = iota
	// FailureQuota is a quota or rate-limit condition ("429", "quota").
	// It flips the session's rate limiter into constrained mode.
	FailureQuota
	// FailureBilling is a billing or permission problem ("billing",
	// "permission denied"). When the failing request carried an image
	// it disables image input for the rest of the session.
	FailureBilling
)

// classifyProviderError maps an opaque provider error to a FailureKind.
// Quota is checked first: a message mentioning both quota and billing
// terms throttles rather than disables, since throttling is recoverable
// within the session and disabling image input is not.
func classifyProviderError(err error) FailureKind {
	if err == nil {
		return FailureGeneric
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") {
		return FailureQuota
	}
	if strings.Contains(msg, "billing") || strings.Contains(msg, "permission denied") {
		return FailureBilling
	}
	return FailureGeneric
}
