package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetToken fetches the stored calendar token for a person.
// Returns ErrNotFound when the person has not connected a calendar.
func (db *DB) GetToken(ctx context.Context, personID string) (*CalendarToken, error) {
	var token CalendarToken
	err := db.pool.QueryRow(ctx, `
		SELECT id, person_id, access_token, refresh_token, token_type, expiry
		FROM calendar_tokens WHERE person_id = $1
	`, personID).Scan(&token.ID, &token.PersonID, &token.AccessToken, &token.RefreshToken, &token.TokenType, &token.Expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("token for person %s: %w", personID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token for %s: %w", personID, err)
	}
	return &token, nil
}

// UpsertToken stores or replaces a person's calendar token
func (db *DB) UpsertToken(ctx context.Context, token *CalendarToken) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO calendar_tokens (id, person_id, access_token, refresh_token, token_type, expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (person_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry
	`, token.ID, token.PersonID, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry)
	if err != nil {
		return fmt.Errorf("failed to upsert token for %s: %w", token.PersonID, err)
	}
	return nil
}

// DeleteToken removes a person's stored calendar token
func (db *DB) DeleteToken(ctx context.Context, personID string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM calendar_tokens WHERE person_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("failed to delete token for %s: %w", personID, err)
	}
	return nil
}
