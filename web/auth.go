// ABOUTME: Authentication middleware resolving each /api request to a principal via the identity provider.
// ABOUTME: The principal rides on the request context; rejections render as JSON 401 with a reason.
package web

import (
	"context"
	"net/http"

	"github.com/2389-research/gridhq/board/server"
	"go.uber.org/zap"
)

type principalKey struct{}

// PrincipalFrom returns the authenticated principal stored by the middleware.
func PrincipalFrom(ctx context.Context) (server.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(server.Principal)
	return p, ok
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.identity.Identify(r)
		if err != nil {
			s.logger.Debug("request rejected",
				zap.String("component", "web.auth"),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func author(r *http.Request) string {
	p, _ := PrincipalFrom(r.Context())
	return p.Author()
}
