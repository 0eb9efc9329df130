package kitchen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil error", nil, FailureGeneric},
		{"plain failure", errors.New("connection refused"), FailureGeneric},
		{"status 429", errors.New("provider returned status 429: too many requests"), FailureQuota},
		{"quota keyword", errors.New("RESOURCE_EXHAUSTED: Quota exceeded for requests"), FailureQuota},
		{"billing keyword", errors.New("Billing account not configured"), FailureBilling},
		{"permission denied", errors.New("403 PERMISSION DENIED for this API key"), FailureBilling},
		{"quota wins over billing", errors.New("quota exceeded, enable billing to raise limits"), FailureQuota},
		{"wrapped error", fmt.Errorf("analyze dish: %w", errors.New("http 429")), FailureQuota},
		{"server error", errors.New("500 internal server error"), FailureGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyProviderError(tt.err))
		})
	}
}
