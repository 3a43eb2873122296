package di

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/deck"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/handler/api"
	"CountrySwipe/internal/handler/ws"
	"CountrySwipe/internal/poller"
	internalrepo "CountrySwipe/internal/repository"
	"CountrySwipe/internal/service/chain"
	"CountrySwipe/internal/service/chainobs"
	"CountrySwipe/internal/service/newsfeed"
	"CountrySwipe/internal/service/ratelimit"
	"CountrySwipe/internal/service/wallet"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/internal/usecase"
	"CountrySwipe/pkg/cache"
	"CountrySwipe/pkg/config"
	xhttp "CountrySwipe/pkg/http"
	pkgkafka "CountrySwipe/pkg/kafka"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
	"CountrySwipe/pkg/server"
	"CountrySwipe/pkg/tracing"
)

// Pollers groups the read-model pollers so handlers and the app can share them.
type Pollers struct {
	Stats     *poller.Poller[models.PortfolioStats]
	Positions *poller.Poller[[]models.Position]
	Markets   *poller.Poller[[]models.Market]
	News      *poller.Poller[[]models.NewsItem]
}

func (p *Pollers) Group() poller.Group {
	return poller.Group{p.Stats, p.Positions, p.Markets, p.News}
}

// AccountPollers are the pollers gated on a connected wallet.
func (p *Pollers) AccountPollers() poller.Group {
	return poller.Group{p.Stats, p.Positions}
}

// ChainClient bundles the observed contract gateway with the RPC client that owns the connection.
type ChainClient struct {
	repository.Chain
	rpc *ethclient.Client
}

func (c *ChainClient) Close() error {
	if c.rpc != nil {
		c.rpc.Close()
	}
	return nil
}

// SessionID identifies the single swipe session of the process in every event it emits.
type SessionID string

func ProvideSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the root logger. With Kafka configured, error logs are
// aggregated and shipped to the logs topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      producer,
		})
	}
	return log, nil
}

func ProvideTracing(cfg *config.Config) (*tracing.Provider, error) {
	p, err := tracing.Init(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	return p, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(nil)
}

func ProvideHub(log *logger.Logger) *ws.Hub {
	return ws.NewHub(log.With(logger.String("component", "ws")))
}

// ProvideEventPublisher fans session events out to WebSocket clients and, when
// configured, the Kafka events topic.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, hub *ws.Hub) repository.EventPublisher {
	pubs := internalrepo.FanoutPublisher{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic))
	}
	return pubs
}

// ProvideCache returns the in-process cache, layered over Redis when enabled.
// An unreachable Redis degrades to memory only.
func ProvideCache(cfg *config.Config, log *logger.Logger) cache.Service {
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(256),
		cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		return mem
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		log.Warn("redis unavailable, using memory cache only", logger.String("addr", cfg.Cache.Redis.Addr), logger.Error(err))
		return mem
	}
	return cache.NewLayeredCache(mem, rc, cfg.Cache.TTL)
}

func ProvideNewsSource(cfg *config.Config, c cache.Service, log *logger.Logger) repository.NewsSource {
	client := xhttp.NewClient(
		xhttp.WithBaseURL(cfg.News.BaseURL),
		xhttp.WithTimeout(cfg.News.Timeout),
	)
	return newsfeed.New(client,
		newsfeed.WithCache(c, cfg.Cache.TTL),
		newsfeed.WithLogger(log.With(logger.String("component", "news"))),
	)
}

// ProvideWallet creates the process-wide wallet session and connects it when a key is configured.
func ProvideWallet(cfg *config.Config, log *logger.Logger) *wallet.Session {
	w := wallet.NewSession(cfg.Chain.PrivateKey, cfg.Chain.ChainID)
	if cfg.Chain.PrivateKey == "" {
		log.Warn("no wallet key configured, account features disabled until one is provided")
		return w
	}
	addr, err := w.Connect()
	if err != nil {
		log.Warn("wallet connect failed", logger.Error(err))
		return w
	}
	log.Info("wallet connected", logger.String("address", addr.Hex()), logger.Int64("chain_id", cfg.Chain.ChainID))
	return w
}

// ProvideChain dials the RPC endpoint and wraps the gateway with tracing and logging.
func ProvideChain(cfg *config.Config, w *wallet.Session, log *logger.Logger) (*ChainClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addrs := chain.Addresses{Trading: common.HexToAddress(cfg.Chain.TradingAddress)}
	if cfg.Chain.TokenAddress != "" {
		addrs.Token = common.HexToAddress(cfg.Chain.TokenAddress)
	}
	if cfg.Chain.RegistryAddress != "" {
		addrs.Registry = common.HexToAddress(cfg.Chain.RegistryAddress)
	}

	chainLog := log.With(logger.String("component", "chain"))
	gw, rpc, err := chain.Dial(ctx, cfg.Chain.RPCURL, w, addrs,
		chain.WithReceiptPoll(cfg.Chain.ReceiptPoll),
		chain.WithLogger(chainLog),
	)
	if err != nil {
		return nil, fmt.Errorf("chain: %w", err)
	}
	return &ChainClient{Chain: chainobs.Wrap(gw, chainLog), rpc: rpc}, nil
}

func ProvideTracker(cfg *config.Config, c *ChainClient, log *logger.Logger) *txflow.Tracker {
	return txflow.NewTracker(c,
		txflow.WithTimeouts(cfg.Trade.SignTimeout, cfg.Trade.ConfirmTimeout),
		txflow.WithLogger(log.With(logger.String("component", "txflow"))),
	)
}

func ProvideBackground() *usecase.Background {
	return usecase.NewBackground()
}

func ProvideQueries(c *ChainClient, w *wallet.Session, log *logger.Logger) *usecase.Queries {
	return usecase.NewQueries(c, c, w, log.With(logger.String("component", "queries")))
}

// ProvidePollers builds the read-model pollers. Account pollers idle until a
// wallet is connected; the news poller only stores the feed for the next reset.
// Every fresh portfolio snapshot is pushed to WebSocket clients.
func ProvidePollers(
	cfg *config.Config,
	q *usecase.Queries,
	news repository.NewsSource,
	hub *ws.Hub,
	m repository.Metrics,
	log *logger.Logger,
) *Pollers {
	plog := log.With(logger.String("component", "poller"))
	return &Pollers{
		Stats: poller.New("stats", cfg.Polling.Stats, q.Stats,
			poller.WithEnabled[models.PortfolioStats](q.AccountKnown),
			poller.WithMetrics[models.PortfolioStats](m),
			poller.WithLogger[models.PortfolioStats](plog),
			poller.OnUpdate(publishSnapshot[models.PortfolioStats](hub, "stats")),
		),
		Positions: poller.New("positions", cfg.Polling.Positions, q.Positions,
			poller.WithEnabled[[]models.Position](q.AccountKnown),
			poller.WithMetrics[[]models.Position](m),
			poller.WithLogger[[]models.Position](plog),
			poller.OnUpdate(publishSnapshot[[]models.Position](hub, "positions")),
		),
		Markets: poller.New("markets", cfg.Polling.Markets, q.Markets,
			poller.WithEnabled[[]models.Market](q.AccountKnown),
			poller.WithMetrics[[]models.Market](m),
			poller.WithLogger[[]models.Market](plog),
			poller.OnUpdate(publishSnapshot[[]models.Market](hub, "markets")),
		),
		News: poller.New("news", cfg.News.RefreshInterval, news.FetchNews,
			poller.WithMetrics[[]models.NewsItem](m),
			poller.WithLogger[[]models.NewsItem](plog),
		),
	}
}

type portfolioUpdate[T any] struct {
	Query    string             `json:"query"`
	Snapshot models.Snapshot[T] `json:"snapshot"`
}

func publishSnapshot[T any](pub repository.EventPublisher, query string) func(models.Snapshot[T]) {
	return func(s models.Snapshot[T]) {
		_ = pub.PublishEvent(context.Background(), &models.Event{
			ID:   uuid.NewString(),
			Type: models.EventPortfolio,
			At:   time.Now(),
			Data: portfolioUpdate[T]{Query: query, Snapshot: s},
		})
	}
}

func ProvideDispatcher(
	cfg *config.Config,
	id SessionID,
	c *ChainClient,
	tracker *txflow.Tracker,
	pollers *Pollers,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Dispatcher {
	opts := []usecase.DispatcherOption{usecase.WithEvents(events, string(id))}
	if cfg.Trade.PrevalidateBalance {
		opts = append(opts, usecase.WithPrevalidation(pollers.Stats.Latest, cfg.Trade.SnapshotMaxAge))
	}
	return usecase.NewDispatcher(
		country.NewResolver(country.TradeRules),
		c,
		tracker,
		m,
		log.With(logger.String("component", "dispatcher")),
		opts...,
	)
}

// ProvideSession creates the swipe session. A background news refresh is stored
// and applied on the next reset.
func ProvideSession(
	cfg *config.Config,
	id SessionID,
	news repository.NewsSource,
	dispatcher *usecase.Dispatcher,
	tracker *txflow.Tracker,
	bg *usecase.Background,
	pollers *Pollers,
	events repository.EventPublisher,
	hub *ws.Hub,
	m repository.Metrics,
	log *logger.Logger,
) (*usecase.Session, error) {
	amounts, err := usecase.NewAmountSelector(cfg.Trade.Amounts, cfg.Trade.DefaultAmountIndex)
	if err != nil {
		return nil, fmt.Errorf("amounts: %w", err)
	}
	mapper := gesture.NewMapper(gesture.Config{
		ThresholdX:      cfg.Gesture.ThresholdX,
		ThresholdY:      cfg.Gesture.ThresholdY,
		Sensitivity:     cfg.Gesture.Sensitivity,
		RotationDivisor: cfg.Gesture.RotationDivisor,
	})

	s := usecase.NewSession(
		news,
		mapper,
		gesture.TimedTransition{Duration: cfg.Gesture.ExitDuration},
		amounts,
		dispatcher,
		tracker,
		bg,
		m,
		log,
		usecase.WithSessionID(string(id)),
		usecase.WithDeck(deck.New()),
		usecase.WithEventPublisher(events),
		usecase.WithLivePublisher(hub, ratelimit.New(), cfg.Gesture.SamplesPerSec),
	)
	pollers.News.Subscribe(func(snap models.Snapshot[[]models.NewsItem]) {
		if snap.Status == models.SnapshotSuccess {
			s.StoreFeed(snap.Value)
		}
	})
	return s, nil
}

// ProvidePortfolioActions refreshes the stats and positions pollers after every confirmed transfer.
func ProvidePortfolioActions(
	c *ChainClient,
	w *wallet.Session,
	tracker *txflow.Tracker,
	bg *usecase.Background,
	pollers *Pollers,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.PortfolioActions {
	a := usecase.NewPortfolioActions(c, c, w, tracker, bg, m, log.With(logger.String("component", "portfolio")))
	a.OnConfirmed(pollers.AccountPollers().Trigger)
	return a
}

func ProvideHandlers(
	log *logger.Logger,
	session *usecase.Session,
	actions *usecase.PortfolioActions,
	w *wallet.Session,
	pollers *Pollers,
	hub *ws.Hub,
) []xhttp.Handler {
	reads := api.ReadModels{
		Stats:     pollers.Stats.Latest,
		Positions: pollers.Positions.Latest,
		Markets:   pollers.Markets.Latest,
	}
	return []xhttp.Handler{
		api.NewSessionHandler(log, session),
		api.NewPortfolioHandler(log, actions, reads),
		api.NewWalletHandler(log, w, pollers.Group().Trigger),
		hub,
	}
}

func ProvideHTTPServer(cfg *config.Config, log *logger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	httpServer *xhttp.Server,
	session *usecase.Session,
	pollers *Pollers,
	bg *usecase.Background,
	tracer *tracing.Provider,
	events repository.EventPublisher,
	c cache.Service,
	chainClient *ChainClient,
) *server.App {
	return server.New(cfg, log, httpServer, session, pollers.Group(), bg, tracer,
		server.Closer{Name: "events", Close: events.Close},
		server.Closer{Name: "cache", Close: c.Close},
		server.Closer{Name: "chain", Close: chainClient.Close},
	)
}
