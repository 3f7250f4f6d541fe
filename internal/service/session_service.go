package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

type canvasClients interface {
	API(baseURL, apiKey string) (canvas.API, error)
}

type credentialResolver interface {
	Resolve(ctx context.Context, userID string) (models.Credentials, error)
}

// Session is the request-scoped view of one user's Canvas account.
type Session struct {
	UserID      string
	Scope       string
	Client      canvas.API
	Credentials models.Credentials

	cache *CacheService
	mu    sync.Mutex
	user  *canvas.User
}

// NewSession builds a session around an existing client.
func NewSession(userID, scope string, client canvas.API, cache *CacheService) *Session {
	return &Session{UserID: userID, Scope: scope, Client: client, cache: cache}
}

// CurrentUser returns the Canvas account behind the session's token.
func (s *Session) CurrentUser(ctx context.Context) (*canvas.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return s.user, nil
	}
	user, _, err := Remember(ctx, s.cache, s.Scope, CacheCurrentUser, nil, 0, func(ctx context.Context) (canvas.User, error) {
		u, err := s.Client.GetCurrentUser(ctx)
		if err != nil {
			return canvas.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, err
	}
	s.user = &user
	return s.user, nil
}

// SessionService opens sessions from a user id.
type SessionService struct {
	credentials credentialResolver
	clients     canvasClients
	cache       *CacheService
	logger      *zap.Logger
}

// NewSessionService constructs the session opener.
func NewSessionService(credentials credentialResolver, clients canvasClients, cache *CacheService, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{credentials: credentials, clients: clients, cache: cache, logger: logger}
}

// Open resolves credentials and binds a Canvas client for userID.
func (s *SessionService) Open(ctx context.Context, userID string) (*Session, error) {
	creds, err := s.credentials.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.API(creds.BaseURL, creds.APIKey)
	if err != nil {
		s.logger.Warn("invalid canvas credentials", zap.String("user_id", userID), zap.String("source", string(creds.Source)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCredentials.Code, appErrors.ErrCredentials.Status, "canvas credentials are invalid")
	}
	sess := NewSession(userID, canvas.TokenFingerprint(creds.BaseURL+"|"+creds.APIKey), client, s.cache)
	sess.Credentials = creds
	return sess, nil
}

// mapUpstreamError turns a Canvas failure into an HTTP-aware error for
// endpoints that expose a single upstream resource.
func mapUpstreamError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch canvas.StatusOf(err) {
	case http.StatusNotFound:
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, resource+" not found")
	case http.StatusUnauthorized:
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "canvas rejected the access token")
	case http.StatusForbidden:
		return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "not allowed to read "+resource)
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to fetch "+resource)
}
