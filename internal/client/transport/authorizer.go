// Package transport holds the request/response policy applied to every call
// the client makes to the task service.
package transport

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/client/api"
	"github.com/atinyakov/GophTasks/internal/logger"
)

// TokenSession is the part of the session store the authorizer needs.
type TokenSession interface {
	Token() string
	SignOut()
}

// Authorizer attaches the bearer token to outgoing requests and signs the
// session out when the service answers 401.
//
// The token is read on every request, never cached. The forced sign-out
// and the onUnauthorized callback both complete before RoundTrip returns,
// so by the time a caller maps the 401 into an error the session is
// already unauthenticated.
type Authorizer struct {
	session        TokenSession
	next           http.RoundTripper
	onUnauthorized func()
	log            *zap.Logger
}

// NewAuthorizer wraps next. onUnauthorized may be nil; it is where the
// front end navigates back to sign-in.
func NewAuthorizer(session TokenSession, next http.RoundTripper, onUnauthorized func(), log *zap.Logger) *Authorizer {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Authorizer{
		session:        session,
		next:           next,
		onUnauthorized: onUnauthorized,
		log:            logger.OrNop(log),
	}
}

// RoundTrip implements http.RoundTripper.
func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	public := api.IsPublicPath(req.URL.Path)

	if !public {
		if token := a.session.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !public {
		a.log.Warn("request rejected as unauthorized, signing out",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("request_id", req.Header.Get(api.RequestIDHeader)))
		a.session.SignOut()
		if a.onUnauthorized != nil {
			a.onUnauthorized()
		}
	}
	return resp, nil
}
