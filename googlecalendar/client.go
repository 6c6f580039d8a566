// Package googlecalendar reads busy time from the practice's Google calendar.
package googlecalendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/NextMind-AI/rigbot/scheduling"
)

type Config struct {
	CalendarID      string
	CredentialsJSON string
	CredentialsFile string
	// Location anchors all-day events, usually the business timezone.
	Location *time.Location
}

type Client struct {
	service    *calendar.Service
	calendarID string
	location   *time.Location
}

// NewClient authenticates with a service account key taken from
// CredentialsJSON or CredentialsFile, falling back to application default
// credentials. Extra options are applied last.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	clientOpts, err := credentialOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	clientOpts = append(clientOpts, opts...)

	service, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: create service: %w", err)
	}

	return &Client{
		service:    service,
		calendarID: cfg.CalendarID,
		location:   cfg.Location,
	}, nil
}

func credentialOptions(ctx context.Context, cfg Config) ([]option.ClientOption, error) {
	data := []byte(cfg.CredentialsJSON)
	if len(data) == 0 && cfg.CredentialsFile != "" {
		var err error
		if data, err = os.ReadFile(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("googlecalendar: read credentials file: %w", err)
		}
	}
	if len(data) == 0 {
		return []option.ClientOption{option.WithScopes(calendar.CalendarReadonlyScope)}, nil
	}

	creds, err := google.CredentialsFromJSON(ctx, data, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: parse credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

// ListBusyIntervals returns the blocking events overlapping [start, end),
// following every result page. Cancelled and transparent events are skipped.
func (c *Client) ListBusyIntervals(ctx context.Context, start, end time.Time) ([]scheduling.Interval, error) {
	var (
		busy      []scheduling.Interval
		pageToken string
		pages     int
	)

	for {
		call := c.service.Events.List(c.calendarID).
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("googlecalendar: list events: %w", err)
		}
		pages++

		for _, event := range events.Items {
			interval, ok, err := c.eventInterval(event)
			if err != nil {
				return nil, err
			}
			if ok {
				busy = append(busy, interval)
			}
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	log.Debug().
		Str("calendar_id", c.calendarID).
		Time("start", start).
		Time("end", end).
		Int("pages", pages).
		Int("busy", len(busy)).
		Msg("Fetched busy intervals")

	return busy, nil
}

var errMissingTime = errors.New("event has no start or end")

func (c *Client) eventInterval(event *calendar.Event) (scheduling.Interval, bool, error) {
	if event.Status == "cancelled" || event.Transparency == "transparent" {
		return scheduling.Interval{}, false, nil
	}

	start, err := c.eventTime(event.Start)
	if err != nil {
		return scheduling.Interval{}, false, fmt.Errorf("googlecalendar: event %s start: %w", event.Id, err)
	}
	end, err := c.eventTime(event.End)
	if err != nil {
		return scheduling.Interval{}, false, fmt.Errorf("googlecalendar: event %s end: %w", event.Id, err)
	}
	if !end.After(start) {
		return scheduling.Interval{}, false, nil
	}
	return scheduling.Interval{Start: start, End: end}, true, nil
}

// eventTime reads a timed instant or, for all-day events, midnight of the
// date in the configured location.
func (c *Client) eventTime(t *calendar.EventDateTime) (time.Time, error) {
	switch {
	case t == nil:
		return time.Time{}, errMissingTime
	case t.DateTime != "":
		return time.Parse(time.RFC3339, t.DateTime)
	case t.Date != "":
		d, err := civil.ParseDate(t.Date)
		if err != nil {
			return time.Time{}, err
		}
		return d.In(c.location), nil
	}
	return time.Time{}, errMissingTime
}
