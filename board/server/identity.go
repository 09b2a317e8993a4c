// ABOUTME: Identity provider resolving an HTTP request to a principal.
// ABOUTME: Accepts a bearer token (constant-time compare) or an allowlisted email header; permissive when unconfigured.
package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/2389-research/gridhq/board/core"
)

// Authentication methods reported on a Principal.
const (
	MethodToken  = "token"
	MethodAccess = "access"
)

// Rejection reasons carried in the Unauthorized error detail.
const (
	ReasonMissingEmail = "missing_email"
	ReasonNotAllowed   = "not_allowed"
	ReasonInvalidToken = "invalid_token"
)

// Principal identifies the caller. Email is nil for token and anonymous callers.
type Principal struct {
	Email  *string `json:"email"`
	Method string  `json:"method"`
}

// Author returns the email for attribution, or "" when anonymous.
func (p Principal) Author() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

// IdentityProvider authenticates requests against the configured token and
// email allowlist.
type IdentityProvider struct {
	token   string
	header  string
	allowed map[string]bool
}

// NewIdentityProvider builds a provider from cfg.
func NewIdentityProvider(cfg *Config) *IdentityProvider {
	p := &IdentityProvider{
		token:   cfg.APIToken,
		header:  cfg.EmailHeader,
		allowed: make(map[string]bool, len(cfg.AllowedEmails)),
	}
	if p.header == "" {
		p.header = DefaultEmailHeader
	}
	for _, e := range cfg.AllowedEmails {
		p.allowed[e] = true
	}
	return p
}

// Open reports whether every request is admitted because neither a token
// nor an allowlist is configured.
func (p *IdentityProvider) Open() bool {
	return p.token == "" && len(p.allowed) == 0
}

// Identify resolves r to a principal or returns an Unauthorized error whose
// detail is the rejection reason.
func (p *IdentityProvider) Identify(r *http.Request) (Principal, error) {
	bearer, hasBearer := bearerToken(r)
	if hasBearer {
		if p.token != "" && subtle.ConstantTimeCompare([]byte(bearer), []byte(p.token)) == 1 {
			return Principal{Method: MethodToken}, nil
		}
		if p.Open() {
			return Principal{Method: MethodToken}, nil
		}
	}

	email := strings.TrimSpace(r.Header.Get(p.header))
	if len(p.allowed) == 0 {
		if p.token != "" {
			// A token is configured and there is no allowlist to fall back on.
			return Principal{}, &core.Error{Kind: core.KindUnauthorized, Detail: ReasonInvalidToken}
		}
		return Principal{Email: optionalEmail(email), Method: MethodAccess}, nil
	}
	if email == "" {
		return Principal{}, &core.Error{Kind: core.KindUnauthorized, Detail: ReasonMissingEmail}
	}
	if !p.allowed[email] {
		return Principal{}, &core.Error{Kind: core.KindUnauthorized, Detail: ReasonNotAllowed}
	}
	return Principal{Email: &email, Method: MethodAccess}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func optionalEmail(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}
