// Package calendarclient wraps the Google Calendar API and turns raw events
// into the per-day busy intervals the matching engine consumes. It owns all
// provider concerns (auth, paging, event shapes) so the engine only ever sees
// plain interval data.
package calendarclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jakechorley/friendzone/internal/config"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/utils"
)

const maxEventsPerFetch = 250

// Client wraps the Google Calendar API client
type Client struct {
	service *calendar.Service
}

// BusyFetcher is the surface the services layer depends on.
type BusyFetcher interface {
	BusyIntervals(ctx context.Context, from, to time.Time) (map[string][]model.BusyInterval, error)
}

// NewClientWithToken creates a new Calendar client using an existing token
func NewClientWithToken(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg, []string{utils.ScopeCalendarReadonly})
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service}, nil
}

// BusyIntervals fetches the user's primary-calendar events between from and
// to and maps them to busy intervals keyed by ISO day. Recurring events are
// expanded server-side via singleEvents.
func (c *Client) BusyIntervals(ctx context.Context, from, to time.Time) (map[string][]model.BusyInterval, error) {
	call := c.service.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEventsPerFetch).
		Context(ctx)

	busyByDay := make(map[string][]model.BusyInterval)
	for {
		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}

		for _, event := range events.Items {
			interval, ok := eventToBusyInterval(event)
			if !ok {
				continue
			}
			busyByDay[interval.Day] = append(busyByDay[interval.Day], interval)
		}

		if events.NextPageToken == "" {
			break
		}
		call = call.PageToken(events.NextPageToken)
	}

	return busyByDay, nil
}
