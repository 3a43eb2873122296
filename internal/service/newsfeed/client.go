// Package newsfeed reads news cards from the backend's /news_card endpoint.
package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/cache"
	xhttp "CountrySwipe/pkg/http"
	"CountrySwipe/pkg/logger"
)

const (
	cardsPath = "/news_card"
	cacheKey  = "news:cards"
)

// ErrNoBaseURL is returned when the backend URL is not configured.
var ErrNoBaseURL = errors.New("newsfeed: news base url is not set")

// row is the wire shape of one news card.
type row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Country     string `json:"country"`
}

type Client struct {
	http  *xhttp.Client
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

var _ repository.NewsSource = (*Client)(nil)

type Option func(*Client)

// WithCache keeps the last fetched cards in c for ttl, to be served when the backend fails.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{http: httpClient, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchNews fetches the current cards with derived symbols. Every call reaches the
// backend; the cached copy is only served when the backend fails.
func (c *Client) FetchNews(ctx context.Context) ([]models.NewsItem, error) {
	if c.http.BaseURL() == "" {
		return nil, ErrNoBaseURL
	}
	if c.cache == nil {
		return c.fetch(ctx)
	}

	items, stale, err := cache.LoadOrStale(ctx, c.cache, cacheKey, c.ttl, c.fetch)
	if err != nil {
		return nil, err
	}
	if stale {
		c.log.Warn("news backend unavailable, serving cached cards", logger.Int("count", len(items)))
	} else {
		c.log.Debug("news fetched", logger.Int("count", len(items)))
	}
	return items, nil
}

func (c *Client) fetch(ctx context.Context) ([]models.NewsItem, error) {
	var rows []row
	if err := c.http.GetJSON(ctx, cardsPath, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch news_card: %w", err)
	}

	items := make([]models.NewsItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.NewsItem{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			ImageURL:    r.ImageURL,
			Country:     r.Country,
			Symbol:      models.NewsSymbol(r.Country),
		})
	}
	return items, nil
}
