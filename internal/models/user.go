package models

import "database/sql"

// CredentialSource tells where Canvas credentials came from.
type CredentialSource string

const (
	CredentialSourceStore       CredentialSource = "store"
	CredentialSourceEnvironment CredentialSource = "environment"
)

// Credentials authenticate one user against one Canvas instance.
type Credentials struct {
	BaseURL string           `json:"base_url"`
	APIKey  string           `json:"-"`
	Source  CredentialSource `json:"source"`
}

// CredentialRecord is the users row holding Canvas credentials.
type CredentialRecord struct {
	CanvasURL    sql.NullString `db:"canvas_url"`
	CanvasAPIKey sql.NullString `db:"canvas_api_key"`
}

// CanvasUser is the authenticated Canvas account.
type CanvasUser struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type UserProfile struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	TimeZone  string  `json:"time_zone,omitempty"`
}
