package scoreserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/providers"
)

// Config controls how the client reaches the score server.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks JSON to the venue score server that feeds the court overlays.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
}

var _ providers.ScoreServer = (*Client)(nil)

// NewClient constructs a score server client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

// FetchCourts lists the venue courts.
func (c *Client) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	var payload courtsResponse
	if err := c.do(ctx, http.MethodGet, pathCourts, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]courts.Court, 0, len(payload.Courts))
	for _, court := range payload.Courts {
		if court.ID == "" {
			continue
		}
		out = append(out, mapCourt(court))
	}
	return out, nil
}

// FetchPlayers lists the registered players.
func (c *Client) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	var payload playersResponse
	if err := c.do(ctx, http.MethodGet, pathPlayers, nil, &payload); err != nil {
		return nil, err
	}
	if payload.OK != nil && !*payload.OK {
		return nil, fmt.Errorf("%s: players request rejected: %s", providerName, payload.Error)
	}
	out := make([]players.Player, 0, len(payload.Players))
	for _, p := range payload.Players {
		out = append(out, mapPlayer(p))
	}
	return out, nil
}

// AuthorizeCourt checks a referee PIN for a court. A rejected PIN is reported as
// (false, nil); only transport and server failures are errors.
func (c *Client) AuthorizeCourt(ctx context.Context, courtID, pin string) (bool, error) {
	var payload authResponse
	path := pathCourts + "/" + url.PathEscape(courtID) + "/authorize"
	err := c.do(ctx, http.MethodPost, path, pinRequest{PIN: pin}, &payload)
	if err != nil {
		var statusErr *providers.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return false, nil
		}
		return false, err
	}
	if payload.CourtID != "" && payload.CourtID != courtID {
		return false, nil
	}
	return payload.OK && payload.Authorized, nil
}

// PublishEvent posts one overlay event.
func (c *Client) PublishEvent(ctx context.Context, event matches.Event) error {
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, pathEvents, event, &ack); err != nil {
		return err
	}
	if !ack.accepted() {
		return fmt.Errorf("%s: event %s rejected: %s", providerName, event.EventType, ack.reason())
	}
	return nil
}

// SubmitStatistics posts the end-of-match statistics.
func (c *Client) SubmitStatistics(ctx context.Context, report matches.StatisticsReport) error {
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, pathStatistics, report, &ack); err != nil {
		return err
	}
	if !ack.accepted() {
		return fmt.Errorf("%s: statistics for match %s rejected: %s", providerName, report.MatchID, ack.reason())
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Message:    readErrorBody(resp.Body),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &providers.StatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", providerName, path, err)
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(body))
}
