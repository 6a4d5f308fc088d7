// Package catalog talks to the free-to-play games catalog and reshapes its
// entries into models.Game.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/models"
	"marketplace-api/internal/util"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.freetogame.com/api"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// ErrNotFound matches an *Error whose upstream status was 404
var ErrNotFound = errors.New("game not found")

// Error is a failed catalog call. StatusCode is zero for network failures.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("catalog responded %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Filter narrows a catalog listing. Empty fields are not sent.
type Filter struct {
	Platform string
	Category string
	SortBy   string
	Tag      string
}

// Client is a thin HTTP client for the catalog API
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a catalog client. Empty baseURL and non-positive timeout fall back to defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

type upstreamGame struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	ShortDescription string `json:"short_description"`
	GameURL          string `json:"game_url"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	Publisher        string `json:"publisher"`
	Developer        string `json:"developer"`
	ReleaseDate      string `json:"release_date"`
}

func (g upstreamGame) toGame() models.Game {
	return models.Game{
		ID:          models.GameIDPrefix + strconv.FormatInt(g.ID, 10),
		Name:        g.Title,
		About:       g.ShortDescription,
		Price:       0,
		URL:         g.GameURL,
		Genre:       g.Genre,
		Platform:    g.Platform,
		Thumbnail:   g.Thumbnail,
		Publisher:   g.Publisher,
		Developer:   g.Developer,
		ReleaseDate: g.ReleaseDate,
	}
}

// ListGames lists catalog games. A tag switches to the catalog's filter endpoint,
// which does not accept a category.
func (c *Client) ListGames(ctx context.Context, f Filter) (games []models.Game, err error) {
	ctx, span := util.StartSpan(ctx, "catalog.ListGames")
	defer func() { util.EndSpan(span, err) }()

	endpoint := "/games"
	query := url.Values{}
	if f.Tag != "" {
		endpoint = "/filter"
		query.Set("tag", f.Tag)
	} else if f.Category != "" {
		query.Set("category", f.Category)
	}
	if f.Platform != "" {
		query.Set("platform", f.Platform)
	}
	if f.SortBy != "" {
		query.Set("sort-by", f.SortBy)
	}

	var raw []upstreamGame
	if err = c.get(ctx, endpoint, query, &raw); err != nil {
		return nil, err
	}

	return lo.Map(raw, func(g upstreamGame, _ int) models.Game { return g.toGame() }), nil
}

// GetGame fetches one game by its numeric catalog id
func (c *Client) GetGame(ctx context.Context, id int64) (game *models.Game, err error) {
	ctx, span := util.StartSpan(ctx, "catalog.GetGame")
	defer func() { util.EndSpan(span, err) }()

	var raw upstreamGame
	if err = c.get(ctx, "/game", url.Values{"id": {strconv.FormatInt(id, 10)}}, &raw); err != nil {
		return nil, err
	}

	g := raw.toGame()
	return &g, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		util.CatalogRequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		util.CatalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	}()

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			outcome = "not_found"
		}
		return &Error{StatusCode: resp.StatusCode, Message: upstreamMessage(body, resp.Status)}
	}

	// The catalog answers some empty or invalid queries with a 2xx status object.
	if msg := gjson.GetBytes(body, "status_message"); msg.Exists() {
		return &Error{StatusCode: resp.StatusCode, Message: msg.String()}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "invalid catalog response: " + err.Error()}
	}

	outcome = "ok"
	return nil
}

func upstreamMessage(body []byte, fallback string) string {
	if msg := gjson.GetBytes(body, "status_message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return fallback
}
