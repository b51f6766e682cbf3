package resilience

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", eris.New("boom"), false},
		{"transient wrapper", NewTransientError(eris.New("quota"), 429), true},
		{"wrapped transient", eris.Wrap(NewTransientError(eris.New("quota"), 429), "outer"), true},
		{"connection reset message", eris.New("read tcp: connection reset by peer"), true},
		{"rate limit message", eris.New("anthropic: rate limit exceeded"), true},
		{"overloaded message", eris.New("api error: Overloaded"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
