package firstcycling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/veloleague/veloleague/internal/domain/race"
	"github.com/veloleague/veloleague/internal/platform/logging"
	"github.com/veloleague/veloleague/internal/platform/resilience"
	"github.com/veloleague/veloleague/internal/usecase"
)

const defaultBaseURL = "https://feed.firstcycling.local/v1"

var errFeedTransient = crerr.New("result feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches scraped stage results from the result feed. It
// implements race.ResultFeed.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

type stageResultPayload struct {
	RaceSlug        string                         `json:"race_slug"`
	Stage           int                            `json:"stage"`
	Year            int                            `json:"year"`
	StagePosition   string                         `json:"stage_position"`
	Classifications map[string][]classificationRow `json:"classifications"`
	Combativity     []string                       `json:"combativity"`
}

type classificationRow struct {
	Rank        int    `json:"rank"`
	RiderNameID string `json:"rider_name_id"`
	TeamName    string `json:"team_name"`
}

func (c *Client) GetStageResult(ctx context.Context, raceSlug string, stage, year int) (race.StageResult, bool, error) {
	path := fmt.Sprintf("/races/%s/stages/%d", url.PathEscape(raceSlug), stage)
	query := url.Values{"year": []string{strconv.Itoa(year)}}

	var payload stageResultPayload
	found, err := c.doJSON(ctx, path, query, &payload)
	if err != nil {
		return race.StageResult{}, false, fmt.Errorf("fetch stage result %s/%d: %w", raceSlug, stage, err)
	}
	if !found {
		return race.StageResult{}, false, nil
	}

	return mapStageResult(raceSlug, stage, year, payload), true, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) (bool, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "result feed circuit breaker rejected request", "state", c.breaker.State())
			return false, fmt.Errorf("%w: result feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return false, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected response payload type %T", out)
	}
	if raw == nil {
		return false, nil
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode feed payload: %w", err)
	}
	return true, nil
}

// executeRequest retries transient failures with linear backoff. A nil
// byte slice with nil error means the feed has no result for the stage.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(errFeedTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errFeedTransient, "read response body: %v", readErr)
			case resp.StatusCode == http.StatusNotFound:
				return nil, nil
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errFeedTransient, "feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "result feed request failed",
		"request", buildCurlPreview(fullURL), "error", lastErr)
	return nil, lastErr
}

func mapStageResult(raceSlug string, stage, year int, payload stageResultPayload) race.StageResult {
	result := race.StageResult{
		RaceSlug:    raceSlug,
		Stage:       stage,
		Year:        year,
		Position:    race.StagePosition(payload.StagePosition),
		Combativity: payload.Combativity,
	}
	if result.Position == "" {
		result.Position = race.StageOrdinary
	}
	if len(payload.Classifications) == 0 {
		return result
	}

	result.Rankings = make(map[race.Classification][]race.Row, len(payload.Classifications))
	for name, rows := range payload.Classifications {
		mapped := make([]race.Row, 0, len(rows))
		for _, row := range rows {
			mapped = append(mapped, race.Row{
				Rank:     row.Rank,
				RiderID:  row.RiderNameID,
				TeamName: row.TeamName,
			})
		}
		result.Rankings[race.Classification(name)] = mapped
	}
	return result
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(body []byte) string {
	const limit = 256
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "..."
}

func buildCurlPreview(fullURL string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -H 'accept: application/json' ")
	_, _ = buf.WriteString("'")
	_, _ = buf.WriteString(fullURL)
	_, _ = buf.WriteString("'")
	return buf.String()
}
