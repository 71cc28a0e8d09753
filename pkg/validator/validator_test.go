package validator

import (
	"testing"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }
func integer(v int) *int        { return &v }

func TestValidate_TrackRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    domain.TrackRequest
		errors []response.ValidationError
	}{
		{
			name: "valid pageview",
			req:  domain.TrackRequest{Type: "pageview", Page: "/"},
		},
		{
			name: "valid session",
			req:  domain.TrackRequest{Type: "session", Duration: float(0), Pages: integer(1)},
		},
		{
			name: "valid event",
			req:  domain.TrackRequest{Type: "event", EventName: "cta_click"},
		},
		{
			name:   "missing type",
			req:    domain.TrackRequest{},
			errors: []response.ValidationError{{Field: "type", Message: "type is required"}},
		},
		{
			name:   "unknown type",
			req:    domain.TrackRequest{Type: "click"},
			errors: []response.ValidationError{{Field: "type", Message: "type must be one of: pageview, session, event"}},
		},
		{
			name:   "pageview without page",
			req:    domain.TrackRequest{Type: "pageview"},
			errors: []response.ValidationError{{Field: "page", Message: "page is required when type is pageview"}},
		},
		{
			name:   "session without duration",
			req:    domain.TrackRequest{Type: "session"},
			errors: []response.ValidationError{{Field: "duration", Message: "duration is required when type is session"}},
		},
		{
			name:   "session with negative duration",
			req:    domain.TrackRequest{Type: "session", Duration: float(-5)},
			errors: []response.ValidationError{{Field: "duration", Message: "duration must be greater than or equal to 0"}},
		},
		{
			name:   "event without name",
			req:    domain.TrackRequest{Type: "event"},
			errors: []response.ValidationError{{Field: "eventName", Message: "eventName is required when type is event"}},
		},
		{
			name:   "negative pages",
			req:    domain.TrackRequest{Type: "session", Duration: float(10), Pages: integer(-1)},
			errors: []response.ValidationError{{Field: "pages", Message: "pages must be greater than or equal to 0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.req)
			assert.Equal(t, tt.errors, errs)
		})
	}
}

func TestValidate_MaxLength(t *testing.T) {
	long := make([]byte, 2049)
	for i := range long {
		long[i] = 'a'
	}

	errs := Validate(&domain.TrackRequest{Type: "pageview", Page: string(long)})

	require.Len(t, errs, 1)
	assert.Equal(t, "page", errs[0].Field)
	assert.Equal(t, "page must be at most 2048 characters", errs[0].Message)
}
