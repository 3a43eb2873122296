// Package eventstream follows the /ws event feed of a running swipe server.
package eventstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/pkg/logger"
)

var ErrNotConnected = errors.New("eventstream: not connected")

// Frame is one event as received from the server. Data is decoded lazily by the consumer.
type Frame struct {
	Type models.EventType `json:"type"`
	At   time.Time        `json:"at"`
	Data json.RawMessage  `json:"data"`
}

// Decode unmarshals the frame payload into dest.
func (f Frame) Decode(dest interface{}) error {
	return json.Unmarshal(f.Data, dest)
}

type Option func(*Client)

func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) { c.reconnectDelay = d }
}

func WithPingInterval(d time.Duration) Option {
	return func(c *Client) { c.pingInterval = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithHeader(h http.Header) Option {
	return func(c *Client) { c.header = h }
}

// Client is a reconnecting reader of server events.
type Client struct {
	url            string
	header         http.Header
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected bool
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:            url,
		reconnectDelay: 2 * time.Second,
		pingInterval:   30 * time.Second,
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		return fmt.Errorf("eventstream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Debug("eventstream connected", logger.String("url", c.url))
	return nil
}

// Read streams frames until ctx ends or the connection fails. Both channels are
// closed when reading stops; at most one error is sent.
func (c *Client) Read(ctx context.Context) (<-chan Frame, <-chan error) {
	frames := make(chan Frame, 256)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		errs <- ErrNotConnected
		close(frames)
		close(errs)
		return frames, errs
	}

	readCtx, cancel := context.WithCancel(ctx)
	go c.pingLoop(readCtx, conn)

	// unblock ReadMessage on cancellation
	go func() {
		<-readCtx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	go func() {
		defer cancel()
		defer close(frames)
		defer close(errs)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				c.connected = false
				c.mu.Unlock()
				if ctx.Err() == nil {
					errs <- fmt.Errorf("eventstream read: %w", err)
				}
				return
			}
			var f Frame
			if err := json.Unmarshal(b, &f); err != nil {
				c.log.Debug("eventstream: malformed frame", logger.Error(err))
				continue
			}
			select {
			case frames <- f:
			case <-readCtx.Done():
				return
			default:
				// drop on backpressure
			}
		}
	}()

	return frames, errs
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	if c.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Reconnect closes the current connection, waits the reconnect delay and dials again.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-time.After(c.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.Connect(ctx)
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
