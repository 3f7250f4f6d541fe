package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

type credentialReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.CredentialRecord, error)
}

// CredentialService resolves the Canvas instance and token for a user.
type CredentialService struct {
	repo     credentialReader
	fallback models.Credentials
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCredentialService constructs the resolver. repo may be nil when no store is configured.
func NewCredentialService(repo credentialReader, defaultURL, defaultAPIKey string, metrics *MetricsService, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		repo: repo,
		fallback: models.Credentials{
			BaseURL: strings.TrimSpace(defaultURL),
			APIKey:  strings.TrimSpace(defaultAPIKey),
			Source:  models.CredentialSourceEnvironment,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve prefers the user's stored credentials and falls back to the
// environment defaults when the row is missing, incomplete, or unreadable.
func (s *CredentialService) Resolve(ctx context.Context, userID string) (models.Credentials, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Credentials{}, appErrors.Clone(appErrors.ErrValidation, "User ID is required")
	}

	if s.repo != nil {
		start := time.Now()
		record, err := s.repo.FindByUserID(ctx, userID)
		s.metrics.ObserveDBQuery("find_canvas_credentials", time.Since(start))
		switch {
		case err != nil:
			s.logger.Warn("credential lookup failed, using defaults", zap.String("user_id", userID), zap.Error(err))
		case record == nil:
			s.logger.Debug("no stored credentials", zap.String("user_id", userID))
		default:
			url := strings.TrimSpace(record.CanvasURL.String)
			key := strings.TrimSpace(record.CanvasAPIKey.String)
			if url != "" && key != "" {
				return models.Credentials{BaseURL: url, APIKey: key, Source: models.CredentialSourceStore}, nil
			}
		}
	}

	if s.fallback.BaseURL == "" || s.fallback.APIKey == "" {
		return models.Credentials{}, appErrors.ErrCredentials
	}
	return s.fallback, nil
}
