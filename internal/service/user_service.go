package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

// UserService exposes the Canvas account behind a session.
type UserService struct {
	logger *zap.Logger
}

// NewUserService constructs a user service.
func NewUserService(logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{logger: logger}
}

// Init verifies the session's token by loading the current Canvas user.
func (s *UserService) Init(ctx context.Context, sess *Session) (*models.CanvasUser, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("session init failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, mapUpstreamError(err, "current user")
	}
	s.logger.Info("canvas session initialised",
		zap.String("user_id", sess.UserID),
		zap.Int64("canvas_user_id", user.ID),
		zap.String("credential_source", string(sess.Credentials.Source)),
	)
	return &models.CanvasUser{ID: user.ID, Name: user.Name, Email: user.Email, AvatarURL: user.AvatarURL}, nil
}

// Profile returns the user's profile. Instances that hide /profile fall
// back to the basic account record.
func (s *UserService) Profile(ctx context.Context, sess *Session) (*models.UserProfile, error) {
	profile, err := sess.Client.GetProfile(ctx)
	if err == nil {
		return &models.UserProfile{
			ID:        profile.ID,
			Name:      profile.Name,
			Email:     optionalString(profile.PrimaryEmail),
			Bio:       profile.Bio,
			AvatarURL: optionalString(profile.AvatarURL),
			TimeZone:  profile.TimeZone,
		}, nil
	}
	s.logger.Debug("profile unavailable, using current user", zap.String("user_id", sess.UserID), zap.Error(err))

	user, userErr := sess.CurrentUser(ctx)
	if userErr != nil {
		return nil, mapUpstreamError(userErr, "user profile")
	}
	return &models.UserProfile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     optionalString(user.Email),
		AvatarURL: optionalString(user.AvatarURL),
	}, nil
}
