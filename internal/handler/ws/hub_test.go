package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/pkg/logger"
)

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	err = hub.PublishEvent(context.Background(), &models.Event{
		Type: models.EventTx,
		Data: models.Feedback{Kind: models.FeedbackLoading, Message: "Waiting for confirmation..."},
	})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string          `json:"type"`
		Data models.Feedback `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.Equal(t, "tx", msg.Type)
	require.Equal(t, models.FeedbackLoading, msg.Data.Kind)

	require.NoError(t, hub.Close())
	require.Zero(t, hub.Clients())
}

func TestPublishWithoutClients(t *testing.T) {
	hub := NewHub(logger.Nop())
	require.NoError(t, hub.PublishEvent(context.Background(), &models.Event{Type: models.EventDeck}))
	require.NoError(t, hub.PublishEvent(context.Background(), nil))
}
