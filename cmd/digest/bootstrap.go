package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"daily-intel/internal/api"
	"daily-intel/internal/archive"
	"daily-intel/internal/collectors/collectorobs"
	"daily-intel/internal/collectors/jobs"
	"daily-intel/internal/collectors/news"
	"daily-intel/internal/collectors/sap"
	"daily-intel/internal/collectors/stocks"
	"daily-intel/internal/digest"
	"daily-intel/internal/feed"
	"daily-intel/internal/interfaces"
	"daily-intel/internal/logger"
	"daily-intel/internal/mailer"
	"daily-intel/internal/scrape"
	"daily-intel/internal/store"
	"daily-intel/internal/summary/claude"
	"daily-intel/internal/summary/noop"
	"daily-intel/internal/summary/openai"
	"daily-intel/internal/summary/summaryobs"
	"daily-intel/internal/trace"
)

// initializeSystem loads .env and starts logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem(ctx context.Context) {
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown(ctx)
}

// loadConfig reads path, falling back to built-in defaults when the file is
// absent
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, "Config file not found, using defaults", "path", path)
		return store.Default(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeHTTP builds the one transport every upstream shares, and a client
// over it. Timeouts live in the transport, per attempt.
func initializeHTTP(cfg *store.Config) (*api.Transport, *api.Client) {
	transport := api.NewTransport(api.TransportConfigFrom(cfg), nil)
	client := api.NewClient(api.WithTransport(transport))
	return transport, client
}

// initializeCollectors wires each collector over the shared transport and
// wraps it with observability middleware
func initializeCollectors(ctx context.Context, cfg *store.Config, creds store.Credentials, transport *api.Transport, client *api.Client) digest.Components {
	parser := feed.NewParser(client, feed.WithDescriptionLimit(cfg.Filters.DescriptionLimit))
	scraper := scrape.New(transport, transport.Budget())

	var newsOpts []news.Option
	if creds.NewsAPIKey != "" {
		newsOpts = append(newsOpts, news.WithHeadlineAPI(news.NewNewsAPI(client, cfg.News.NewsAPIURL, creds.NewsAPIKey, cfg.News.Country).
			WithDescriptionLimit(cfg.Filters.DescriptionLimit)))
		logger.Info(ctx, "NewsAPI headlines enabled")
	}

	return digest.Components{
		News:   collectorobs.WrapNews(news.New(cfg, parser, scraper, newsOpts...)),
		Stocks: collectorobs.WrapStocks(initializeStocks(ctx, cfg, creds, scraper, client)),
		Jobs:   collectorobs.WrapJobs(jobs.New(cfg, parser, scraper)),
		SAP:    collectorobs.WrapSAP(sap.New(cfg, parser)),
	}
}

// initializeStocks prefers Kite quotes when a token is configured and falls
// back to the public chart API
func initializeStocks(ctx context.Context, cfg *store.Config, creds store.Credentials, scraper *scrape.Scraper, client *api.Client) interfaces.StockCollector {
	yahoo := stocks.NewYahooProvider(client, cfg.Stocks.ChartURL, cfg.Stocks.SymbolSuffix)

	var chain stocks.ChainProvider
	if creds.HasKite() {
		chain = append(chain, stocks.NewKiteProvider(creds.KiteAPIKey, creds.KiteAccessToken, cfg.Stocks.Exchange, client.HTTPClient()))
		logger.Info(ctx, "Kite Connect quotes enabled", "exchange", cfg.Stocks.Exchange)
	}
	chain = append(chain, yahoo)

	return stocks.New(cfg, scraper, chain, yahoo)
}

// initializeSummarizer picks the summary provider and wraps it with
// observability middleware
func initializeSummarizer(ctx context.Context, cfg *store.Config, creds store.Credentials, client *api.Client) interfaces.Summarizer {
	var s interfaces.Summarizer

	switch strings.ToUpper(cfg.Summary.Provider) {
	case "OPENAI":
		s = openai.New(client, cfg.Summary, creds.OpenAIKey)
	case "CLAUDE":
		s = claude.New(client, cfg.Summary, creds.AnthropicKey)
	default:
		s = noop.New()
		logger.Debug(ctx, "No summary provider configured - report goes out without an executive summary")
	}

	return summaryobs.Wrap(s)
}

func initializeMailer(cfg *store.Config, creds store.Credentials) *mailer.Mailer {
	transport := &mailer.SMTPTransport{
		Host:     creds.SMTPHost,
		Port:     creds.SMTPPort,
		Username: creds.EmailFrom,
		Password: creds.EmailPassword,
		Timeout:  cfg.HTTP.ConnectTimeout + cfg.HTTP.ReadTimeout*2,
	}
	return mailer.New(transport, creds.EmailFrom, cfg.Location(), mailer.WithSenderName(cfg.Report.Title))
}

func initializeArchive(cfg *store.Config) *archive.Archive {
	dir := cfg.Report.ArchiveDir
	if v := os.Getenv("REPORT_ARCHIVE_DIR"); v != "" {
		dir = v
	}
	retention := cfg.Report.RetentionDays
	if v := os.Getenv("REPORT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			retention = n
		}
	}
	return archive.New(dir, retention, cfg.Location())
}

// buildRunner wires a complete runner from config and environment
func buildRunner(ctx context.Context, cfg *store.Config, creds store.Credentials) *digest.Runner {
	transport, client := initializeHTTP(cfg)

	comps := initializeCollectors(ctx, cfg, creds, transport, client)
	comps.Summarizer = initializeSummarizer(ctx, cfg, creds, client)
	comps.Mailer = initializeMailer(cfg, creds)
	comps.Archive = initializeArchive(cfg)

	return digest.New(cfg, creds, comps)
}

func smtpAddr(creds store.Credentials) string {
	return net.JoinHostPort(creds.SMTPHost, strconv.Itoa(creds.SMTPPort))
}
