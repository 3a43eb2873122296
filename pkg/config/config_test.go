package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "development", c.Environment)
	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, []string{"1", "5", "10"}, c.Trade.Amounts)
	require.Equal(t, 1, c.Trade.DefaultAmountIndex)
	require.EqualValues(t, 84532, c.Chain.ChainID)
	require.Equal(t, 400*time.Millisecond, c.Gesture.ExitDuration)
	require.False(t, c.Trade.PrevalidateBalance)
	require.False(t, c.KafkaEnabled())
}

func TestLoadFile(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	require.Equal(t, "staging", c.Environment)
	require.Equal(t, "http://news.local", c.News.BaseURL)
	require.Equal(t, 30*time.Second, c.News.RefreshInterval)
	require.Equal(t, []string{"2", "4"}, c.Trade.Amounts)
	require.True(t, c.KafkaEnabled())
	// untouched sections keep their defaults
	require.Equal(t, 5*time.Second, c.Polling.Stats)
}

func TestValidateRejectsBadAmountIndex(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.NoError(t, err)

	c.Trade.DefaultAmountIndex = 3
	require.Error(t, c.Validate())
}

func TestValidateRequiresNewsInProduction(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.NoError(t, err)

	c.Environment = "production"
	require.Error(t, c.Validate())
	c.News.BaseURL = "https://news.example"
	require.NoError(t, c.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEWS_BASE_URL", "http://env-news")
	t.Setenv("WALLET_PRIVATE_KEY", "0xabc123")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CHAIN_ID", "8453")

	c, err := LoadWithEnv(filepath.Join(os.TempDir(), "countryswipe-missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "http://env-news", c.News.BaseURL)
	require.Equal(t, "abc123", c.Chain.PrivateKey)
	require.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	require.True(t, c.Cache.Redis.Enabled)
	require.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	require.EqualValues(t, 8453, c.Chain.ChainID)
}
