package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rayanlekkat/brio-lead-scraper/internal/config"
	"github.com/rayanlekkat/brio-lead-scraper/internal/dedup"
	"github.com/rayanlekkat/brio-lead-scraper/internal/dnc"
	"github.com/rayanlekkat/brio-lead-scraper/internal/emailverify"
	"github.com/rayanlekkat/brio-lead-scraper/internal/events"
	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
	"github.com/rayanlekkat/brio-lead-scraper/internal/leadpool"
	"github.com/rayanlekkat/brio-lead-scraper/internal/leads"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/search"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
	"github.com/rayanlekkat/brio-lead-scraper/internal/webcrawl"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	log      logger.Interface
	store    storage.Store
	registry *dnc.Registry
	pool     *leadpool.Pool
	leads    *leads.Service
	bus      *events.Bus
	jobs     *job.MemoryStore
	scrape   *job.ScrapeRunner
	extract  *job.ExtractRunner
}

// newApp loads configuration and wires the full pipeline.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Development: cfg.Logger.Development,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := newStore(cfg, log)
	if err != nil {
		return nil, err
	}

	registry := dnc.NewRegistry(store, log)
	pool := leadpool.NewPool(store, log)
	leadService := leads.NewService(store, log)
	leadService.SetBlocker(registry)
	deduplicator := dedup.New(registry, pool, log)

	bus := events.NewBus(log)
	bus.Subscribe(events.NewLogHandler(log))
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if publisher := events.NewRedisPublisher(client, events.DefaultStream); publisher != nil {
			bus.Subscribe(publisher)
		}
	}

	searchClient := search.NewClient(search.Config{
		BaseURL:  cfg.Search.BaseURL,
		Login:    cfg.Search.Login,
		Password: cfg.Search.Password,
	}, log)

	crawlOpts := []webcrawl.Option{
		webcrawl.WithTimeout(cfg.Crawl.Timeout),
		webcrawl.WithPageDelay(cfg.Crawl.PageDelay),
	}
	if cfg.Crawl.VerifyMX {
		crawlOpts = append(crawlOpts, webcrawl.WithMXVerifier(emailverify.NewMXChecker(log)))
	}
	crawler := webcrawl.New(log, crawlOpts...)

	jobs := job.NewMemoryStore()
	scrapeRunner := job.NewScrapeRunner(searchClient, deduplicator, leadService, pool, jobs, bus, log)
	if cfg.Search.Delay > 0 {
		scrapeRunner.SetDelay(cfg.Search.Delay)
	}
	scrapeRunner.SetDefaultLimit(cfg.Search.Limit)
	extractRunner := job.NewExtractRunner(crawler, leadService, jobs, bus, log)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		registry: registry,
		pool:     pool,
		leads:    leadService,
		bus:      bus,
		jobs:     jobs,
		scrape:   scrapeRunner,
		extract:  extractRunner,
	}, nil
}

func newStore(cfg *config.Config, log logger.Interface) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		store, err := storage.NewPostgresStoreDSN(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewFileStore(cfg.Storage.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		return store, nil
	}
}
