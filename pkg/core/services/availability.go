package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/jakechorley/friendzone/internal/config"
	"github.com/jakechorley/friendzone/pkg/clients/calendarclient"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// ErrNoCalendar indicates a person has not connected a calendar. It is not a
// failure: the person is matched with empty provider availability, leaving
// only their recurring entries.
var ErrNoCalendar = errors.New("no calendar connected")

// AvailabilitySource materializes a person's busy calendar over a window.
type AvailabilitySource interface {
	BusyCalendar(ctx context.Context, person db.Person, from, to time.Time) (map[string][]model.BusyInterval, error)
}

// CalendarAvailabilitySource materializes busy calendars from Google Calendar
// plus each person's stored recurring commitments.
type CalendarAvailabilitySource struct {
	oauthCfg *config.OAuthClientConfig
	tokens   db.TokenStore
}

// NewCalendarAvailabilitySource creates a source backed by the given token
// store and OAuth client configuration.
func NewCalendarAvailabilitySource(oauthCfg *config.OAuthClientConfig, tokens db.TokenStore) *CalendarAvailabilitySource {
	return &CalendarAvailabilitySource{oauthCfg: oauthCfg, tokens: tokens}
}

// BusyCalendar fetches the person's provider events and merges in their
// recurring busy entries. A person without a stored token yields
// ErrNoCalendar; recurring entries alone are still returned in that case.
func (s *CalendarAvailabilitySource) BusyCalendar(ctx context.Context, person db.Person, from, to time.Time) (map[string][]model.BusyInterval, error) {
	recurring, err := calendarclient.ExpandRecurringBusy(person.RecurringBusy, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to expand recurring entries for %s: %w", person.ID, err)
	}

	token, err := s.tokens.GetToken(ctx, person.ID)
	if errors.Is(err, db.ErrNotFound) {
		return recurring, ErrNoCalendar
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token for %s: %w", person.ID, err)
	}

	client, err := calendarclient.NewClientWithToken(ctx, s.oauthCfg, &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client for %s: %w", person.ID, err)
	}

	provider, err := client.BusyIntervals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar for %s: %w", person.ID, err)
	}

	return calendarclient.MergeBusyCalendars(provider, recurring), nil
}
