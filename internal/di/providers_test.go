package di

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
	internalrepo "CountrySwipe/internal/repository"
	"CountrySwipe/pkg/cache"
	"CountrySwipe/pkg/config"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/missing.yaml")
	require.NoError(t, err)
	return cfg
}

type recorder struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *recorder) PublishEvent(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func TestKafkaDisabledWithoutBrokers(t *testing.T) {
	cfg := testConfig(t)
	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	require.Nil(t, producer)

	hub := ProvideHub(logger.Nop())
	pub := ProvideEventPublisher(cfg, producer, hub)
	fan, ok := pub.(internalrepo.FanoutPublisher)
	require.True(t, ok)
	require.Len(t, fan, 1)
	require.NoError(t, pub.Close())
}

func TestCacheWithoutRedisIsMemory(t *testing.T) {
	cfg := testConfig(t)
	c := ProvideCache(cfg, logger.Nop())
	defer c.Close()

	_, ok := c.(*cache.MemoryCache)
	require.True(t, ok)
}

func TestUnreachableRedisFallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Redis.Enabled = true
	cfg.Cache.Redis.Addr = "127.0.0.1:1"

	c := ProvideCache(cfg, logger.Nop())
	defer c.Close()

	_, ok := c.(*cache.MemoryCache)
	require.True(t, ok)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	require.IsType(t, metrics.Nop{}, ProvideMetrics(cfg))
}

func TestPublishSnapshot(t *testing.T) {
	rec := &recorder{}
	fn := publishSnapshot[models.PortfolioStats](rec, "stats")
	fn(models.Snapshot[models.PortfolioStats]{
		Status: models.SnapshotSuccess,
		Value:  models.PortfolioStats{WalletBalance: decimal.NewFromInt(7)},
	})

	require.Len(t, rec.events, 1)
	e := rec.events[0]
	require.Equal(t, models.EventPortfolio, e.Type)
	require.NotEmpty(t, e.ID)
	update, ok := e.Data.(portfolioUpdate[models.PortfolioStats])
	require.True(t, ok)
	require.Equal(t, "stats", update.Query)
	require.True(t, update.Snapshot.Value.WalletBalance.Equal(decimal.NewFromInt(7)))
}

func TestSessionIDsAreUnique(t *testing.T) {
	require.NotEqual(t, ProvideSessionID(), ProvideSessionID())
}
