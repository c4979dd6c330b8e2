// Package calendar implements the external calendar integration.
// A finalized plan is encoded as an iCalendar VEVENT and delivered to the
// configured calendar endpoint over HTTP. The service layer treats delivery
// as best-effort: errors returned here are logged, not propagated to the
// API caller.
package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/jwoo-kim/tripplan/internal/domain"
)

// Client delivers plan events to an external calendar server.
// The zero value is not usable; construct with NewClient.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient builds a calendar client for the given endpoint.
// token, when non-empty, is sent as a bearer token on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateEvent encodes the plan as a VCALENDAR object and PUTs it to the
// calendar endpoint under the plan's UUID. The call is idempotent on the
// server side: finalizing twice overwrites the same event.
func (c *Client) CreateEvent(ctx context.Context, plan domain.Plan) error {
	if c.baseURL == "" {
		return errors.New("calendar: no endpoint configured")
	}

	body, err := encodeEvent(plan)
	if err != nil {
		return fmt.Errorf("calendar: encode event: %w", err)
	}

	url := c.baseURL + "/events/" + plan.ID.String() + ".ics"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("calendar: event rejected with status %d", resp.StatusCode)
	}
	return nil
}

// encodeEvent renders a plan as a single-event VCALENDAR.
func encodeEvent(plan domain.Plan) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//tripplan//plan finalizer//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, plan.ID.String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, plan.StartedAt)
	event.Props.SetDateTime(ical.PropDateTimeEnd, plan.EndedAt)
	event.Props.SetText(ical.PropSummary, "Trip to "+string(plan.Destination.Name))
	event.Props.SetText(ical.PropLocation, string(plan.Destination.Name))
	if desc := placeLines(plan.Places); desc != "" {
		event.Props.SetText(ical.PropDescription, desc)
	}
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// placeLines renders the itinerary places as one line per place.
func placeLines(places []domain.Place) string {
	var lines []string
	for _, p := range places {
		lines = append(lines, p.Name)
	}
	return strings.Join(lines, "\n")
}
