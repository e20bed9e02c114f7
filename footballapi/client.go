package footballapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"football-analysis/config"
	"football-analysis/models"
	"football-analysis/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxRetryElapsed = 30 * time.Second

// Client talks to api-football v3 with client-side rate limiting and exponential backoff.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	baseURL   string
	apiKey    string
	league    int
	season    int
	lookahead int
	now       func() time.Time
	log       zerolog.Logger
}

func NewClient(cfg config.FootballAPIConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	lookahead := cfg.LookaheadDays
	if lookahead <= 0 {
		lookahead = 7
	}
	return &Client{
		HTTPClient: utils.NewHTTPClient(cfg.Timeout),
		Limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		league:     cfg.LeagueID,
		season:     cfg.Season,
		lookahead:  lookahead,
		now:        time.Now,
		log:        utils.Component("footballapi"),
	}
}

func (c *Client) Name() string { return "api-football" }

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("api-football: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type fixturesResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response []struct {
		Fixture struct {
			ID     int64     `json:"id"`
			Date   time.Time `json:"date"`
			Status struct {
				Short string `json:"short"`
			} `json:"status"`
		} `json:"fixture"`
		League struct {
			Name string `json:"name"`
		} `json:"league"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

// FetchUpcoming returns not-started fixtures for the configured league between today and the
// lookahead horizon.
func (c *Client) FetchUpcoming(ctx context.Context) ([]Fixture, error) {
	today := c.now().UTC()
	q := url.Values{}
	q.Set("league", strconv.Itoa(c.league))
	q.Set("season", strconv.Itoa(c.season))
	q.Set("from", today.Format(time.DateOnly))
	q.Set("to", today.AddDate(0, 0, c.lookahead).Format(time.DateOnly))
	q.Set("status", "NS")

	var body fixturesResponse
	if err := c.getJSON(ctx, "/fixtures", q, &body); err != nil {
		return nil, err
	}
	if apiErr := providerError(body.Errors); apiErr != "" {
		return nil, fmt.Errorf("api-football: %s", apiErr)
	}

	out := make([]Fixture, 0, len(body.Response))
	for _, r := range body.Response {
		out = append(out, Fixture{
			ExternalID:  strconv.FormatInt(r.Fixture.ID, 10),
			HomeTeam:    r.Teams.Home.Name,
			AwayTeam:    r.Teams.Away.Name,
			Competition: r.League.Name,
			ScheduledAt: r.Fixture.Date,
			Status:      mapStatus(r.Fixture.Status.Short),
			HomeScore:   r.Goals.Home,
			AwayScore:   r.Goals.Away,
		})
	}
	c.log.Debug().Int("fixtures", len(out)).Int("league", c.league).Msg("fetched fixtures")
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path + "?" + q.Encode()
	var payload []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("x-apisports-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			// only throttling and server errors are worth retrying
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		payload, err = io.ReadAll(resp.Body)
		return err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = maxRetryElapsed
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Dur("retry_in", wait).Str("path", path).Msg("api-football request failed")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return err
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// providerError extracts the message from api-football's "errors" field, which is an empty array
// on success and an object keyed by error kind otherwise.
func providerError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var byKind map[string]string
	if err := json.Unmarshal(raw, &byKind); err != nil || len(byKind) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(byKind))
	for _, k := range slices.Sorted(maps.Keys(byKind)) {
		msgs = append(msgs, k+": "+byKind[k])
	}
	return strings.Join(msgs, "; ")
}

func mapStatus(short string) models.MatchStatus {
	switch strings.ToUpper(short) {
	case "1H", "HT", "2H", "ET", "BT", "P", "LIVE", "INT":
		return models.MatchStatusLive
	case "FT", "AET", "PEN":
		return models.MatchStatusFinished
	case "PST", "SUSP":
		return models.MatchStatusPostponed
	case "CANC", "ABD", "AWD", "WO":
		return models.MatchStatusCancelled
	}
	return models.MatchStatusScheduled
}

// IsStatusError reports whether err is an HTTP status error with the given code.
func IsStatusError(err error, code int) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.StatusCode == code
}
