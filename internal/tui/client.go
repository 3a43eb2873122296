package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/usecase"
	xhttp "CountrySwipe/pkg/http"
)

// API is the subset of the swipe server the terminal front-end drives.
type API interface {
	Deck(ctx context.Context) (usecase.DeckView, error)
	Reset(ctx context.Context) (usecase.DeckView, error)
	ToggleFilter(ctx context.Context, country string) (usecase.DeckView, error)
	Act(ctx context.Context, intent models.Intent) (usecase.CommitResult, error)
	CycleAmount(ctx context.Context) (decimal.Decimal, error)
	Tx(ctx context.Context) (models.Feedback, error)
	Dismiss(ctx context.Context) (models.Feedback, error)
	Portfolio(ctx context.Context) (models.Snapshot[models.PortfolioStats], error)
}

type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Client calls the swipe server's JSON API.
type Client struct {
	http *xhttp.Client
}

var _ API = (*Client)(nil)

func NewClient(http *xhttp.Client) *Client {
	return &Client{http: http}
}

func get[T any](ctx context.Context, c *xhttp.Client, path string) (T, error) {
	var env envelope[T]
	err := c.GetJSON(ctx, path, nil, &env)
	return env.Data, apiError(err)
}

func post[T any](ctx context.Context, c *xhttp.Client, path string, body interface{}) (T, error) {
	var env envelope[T]
	err := c.PostJSON(ctx, path, body, &env)
	return env.Data, apiError(err)
}

func (c *Client) Deck(ctx context.Context) (usecase.DeckView, error) {
	return get[usecase.DeckView](ctx, c.http, "/api/deck")
}

func (c *Client) Reset(ctx context.Context) (usecase.DeckView, error) {
	return post[usecase.DeckView](ctx, c.http, "/api/deck/reset", nil)
}

func (c *Client) ToggleFilter(ctx context.Context, country string) (usecase.DeckView, error) {
	return post[usecase.DeckView](ctx, c.http, "/api/deck/filter/toggle", models.FilterRequest{Country: country})
}

func (c *Client) Act(ctx context.Context, intent models.Intent) (usecase.CommitResult, error) {
	return post[usecase.CommitResult](ctx, c.http, "/api/swipe/act", models.ActRequest{Intent: string(intent)})
}

func (c *Client) CycleAmount(ctx context.Context) (decimal.Decimal, error) {
	res, err := post[struct {
		Amount decimal.Decimal `json:"amount"`
	}](ctx, c.http, "/api/amount/cycle", nil)
	return res.Amount, err
}

func (c *Client) Tx(ctx context.Context) (models.Feedback, error) {
	return get[models.Feedback](ctx, c.http, "/api/tx")
}

func (c *Client) Dismiss(ctx context.Context) (models.Feedback, error) {
	return post[models.Feedback](ctx, c.http, "/api/tx/dismiss", nil)
}

func (c *Client) Portfolio(ctx context.Context) (models.Snapshot[models.PortfolioStats], error) {
	return get[models.Snapshot[models.PortfolioStats]](ctx, c.http, "/api/portfolio")
}

// apiError replaces a raw status error with the first message of the server's error envelope.
func apiError(err error) error {
	var se *xhttp.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var env envelope[json.RawMessage]
	if json.Unmarshal([]byte(se.Body), &env) != nil {
		return err
	}
	var appErrs []xhttp.AppError
	if json.Unmarshal(env.Data, &appErrs) == nil && len(appErrs) > 0 && appErrs[0].Message != "" {
		return errors.New(appErrs[0].Message)
	}
	var msg string
	if json.Unmarshal(env.Data, &msg) == nil && msg != "" {
		return errors.New(msg)
	}
	if env.Message != "" {
		return errors.New(strings.ToLower(env.Message))
	}
	return err
}
