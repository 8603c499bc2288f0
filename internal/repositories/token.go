package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

// TokenRepository stores one OAuth token per service so sessions survive
// process restarts.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a TokenRepository with the given database connection.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token stored for a service.
func (r *TokenRepository) Save(service string, token *oauth2.Token) error {
	if service == "" || token == nil {
		return fmt.Errorf("%w: service and token are required", shared.ErrInvalidInput)
	}

	now := time.Now()
	query := `
		INSERT INTO tokens (id, service, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	var expiry any
	if !token.Expiry.IsZero() {
		expiry = token.Expiry
	}

	_, err := r.db.Exec(query, shared.GenerateID(), service, token.AccessToken, token.RefreshToken, expiry, now, now)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get returns the stored token for a service, or [shared.ErrNotAuthenticated]
// when none is stored.
func (r *TokenRepository) Get(service string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, expires_at
		FROM tokens
		WHERE service = ?
	`

	var (
		accessToken  string
		refreshToken sql.NullString
		expiresAt    sql.NullTime
	)

	err := r.db.QueryRow(query, service).Scan(&accessToken, &refreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no stored token for %s", shared.ErrNotAuthenticated, service)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	token := &oauth2.Token{AccessToken: accessToken}
	if refreshToken.Valid {
		token.RefreshToken = refreshToken.String
	}
	if expiresAt.Valid {
		token.Expiry = expiresAt.Time
	}

	return token, nil
}

// Delete removes the stored token for a service.
func (r *TokenRepository) Delete(service string) error {
	result, err := r.db.Exec("DELETE FROM tokens WHERE service = ?", service)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no stored token for %s", shared.ErrNotAuthenticated, service)
	}

	return nil
}
