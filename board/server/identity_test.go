// ABOUTME: Tests for request identification by bearer token and email allowlist.
package server

import (
	"net/http/httptest"
	"testing"

	"github.com/2389-research/gridhq/board/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		headers    map[string]string
		wantMethod string
		wantEmail  string
		wantReason string
	}{
		{
			name:       "open dev mode without headers",
			wantMethod: MethodAccess,
		},
		{
			name:       "open dev mode with any bearer",
			headers:    map[string]string{"Authorization": "Bearer whatever"},
			wantMethod: MethodToken,
		},
		{
			name:       "open dev mode keeps email",
			headers:    map[string]string{DefaultEmailHeader: "dev@example.com"},
			wantMethod: MethodAccess,
			wantEmail:  "dev@example.com",
		},
		{
			name:       "matching token",
			cfg:        Config{APIToken: "s3cret"},
			headers:    map[string]string{"Authorization": "Bearer s3cret"},
			wantMethod: MethodToken,
		},
		{
			name:       "wrong token without allowlist",
			cfg:        Config{APIToken: "s3cret"},
			headers:    map[string]string{"Authorization": "Bearer nope"},
			wantReason: ReasonInvalidToken,
		},
		{
			name:       "no credentials with token configured",
			cfg:        Config{APIToken: "s3cret"},
			wantReason: ReasonInvalidToken,
		},
		{
			name:       "wrong token falls back to allowlisted email",
			cfg:        Config{APIToken: "s3cret", AllowedEmails: []string{"me@example.com"}},
			headers:    map[string]string{"Authorization": "Bearer nope", DefaultEmailHeader: "me@example.com"},
			wantMethod: MethodAccess,
			wantEmail:  "me@example.com",
		},
		{
			name:       "missing email",
			cfg:        Config{AllowedEmails: []string{"me@example.com"}},
			wantReason: ReasonMissingEmail,
		},
		{
			name:       "email not allowed",
			cfg:        Config{AllowedEmails: []string{"me@example.com"}},
			headers:    map[string]string{DefaultEmailHeader: "other@example.com"},
			wantReason: ReasonNotAllowed,
		},
		{
			name:       "custom header",
			cfg:        Config{AllowedEmails: []string{"me@example.com"}, EmailHeader: "X-User-Email"},
			headers:    map[string]string{"X-User-Email": "me@example.com"},
			wantMethod: MethodAccess,
			wantEmail:  "me@example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewIdentityProvider(&tt.cfg)
			r := httptest.NewRequest("GET", "/api/me", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got, err := p.Identify(r)
			if tt.wantReason != "" {
				require.ErrorIs(t, err, core.ErrUnauthorized)
				var e *core.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.wantReason, e.Detail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantEmail, got.Author())
		})
	}
}

func TestIdentityProviderOpen(t *testing.T) {
	assert.True(t, NewIdentityProvider(&Config{}).Open())
	assert.False(t, NewIdentityProvider(&Config{APIToken: "x"}).Open())
	assert.False(t, NewIdentityProvider(&Config{AllowedEmails: []string{"a@b"}}).Open())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("chatty")
	assert.Error(t, err)
}
