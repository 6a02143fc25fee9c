package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Alias1177/Pricer/internal/analyze"
	"github.com/Alias1177/Pricer/internal/api/torn"
	"github.com/Alias1177/Pricer/internal/bot"
	"github.com/Alias1177/Pricer/internal/config"
	"github.com/Alias1177/Pricer/internal/export"
	"github.com/Alias1177/Pricer/internal/inventory"
	"github.com/Alias1177/Pricer/internal/metrics"
	"github.com/Alias1177/Pricer/internal/model"
	"github.com/Alias1177/Pricer/internal/orderbook"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type flags struct {
	input     string
	items     string
	inventory string
	dict      string
	out       string
	saveBooks string
}

func main() {
	var f flags
	flag.StringVar(&f.input, "input", "", "wide order-book CSV to analyze instead of fetching")
	flag.StringVar(&f.items, "items", "", "items to fetch, e.g. 206:3,180:12")
	flag.StringVar(&f.inventory, "inventory", "", "file with a pasted inventory or listing page")
	flag.StringVar(&f.dict, "dict", "", "item dictionary CSV (defaults to PRICER_DICT_PATH)")
	flag.StringVar(&f.out, "out", "prices.xlsx", "report file, .csv or .xlsx")
	flag.StringVar(&f.saveBooks, "save-books", "", "also write the fetched order books as a wide CSV")
	flag.Parse()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting Torn market analyzer")

	m := metrics.New()
	rows, err := loadRows(ctx, cfg, f, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load order books")
	}

	if f.saveBooks != "" {
		if err := writeFile(f.saveBooks, func(file *os.File) error { return orderbook.WriteWideCSV(file, rows) }); err != nil {
			log.Error().Err(err).Msg("Failed to save order books")
		}
	}

	reports, err := analyze.Run(ctx, rows, analyze.Options{
		Thresholds: cfg.Thresholds,
		Workers:    cfg.AnalysisWorkers,
		FeeRate:    cfg.MarketFee,
		Metrics:    m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if err := writeReport(f.out, reports); err != nil {
		log.Fatal().Err(err).Str("path", f.out).Msg("Failed to write report")
	}
	log.Info().Str("path", f.out).Int("items", len(reports)).Msg("Report written")

	printReports(reports)
}

// loadRows reads books from -input or fetches the items named by -items and
// -inventory.
func loadRows(ctx context.Context, cfg *config.Config, f flags, m *metrics.Metrics) ([]model.MarketRow, error) {
	if f.input != "" {
		file, err := os.Open(f.input)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer file.Close()
		return orderbook.ReadWideCSV(file)
	}

	requests, err := collectRequests(cfg, f)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("nothing to analyze: pass -input, -items or -inventory")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PRICER_API_KEY is required to fetch order books")
	}

	client := torn.NewClient(torn.ClientOptions{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerMin: cfg.RateLimitPerMin,
		BucketCapacity: cfg.BucketCapacity(),
		Retries:        cfg.Retries,
		MaxWorkers:     cfg.MaxWorkers,
		SlotCount:      cfg.SlotCount,
		Metrics:        m,
	})

	rows, failed := torn.Rows(client.FetchAll(ctx, requests))
	for _, r := range failed {
		log.Warn().Err(r.Err).Int64("item_id", r.Request.ItemID).Msg("Item skipped")
	}
	return rows, nil
}

func collectRequests(cfg *config.Config, f flags) ([]torn.ItemRequest, error) {
	requests, err := parseItems(f.items)
	if err != nil {
		return nil, err
	}
	if f.inventory == "" {
		return requests, nil
	}

	dictPath := f.dict
	if dictPath == "" {
		dictPath = cfg.DictPath
	}
	dict, err := inventory.LoadDictionaryFile(dictPath)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.inventory)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	lines := inventory.Parse(string(raw), dict, cfg.FuzzyThreshold)
	if unmatched := inventory.Unmatched(lines); len(unmatched) > 0 {
		log.Warn().Strs("lines", unmatched).Msg("Unrecognized inventory lines")
	}
	for _, it := range inventory.Aggregate(lines) {
		requests = append(requests, torn.ItemRequest{ItemID: it.ItemID, MyQuantity: it.Quantity})
	}
	return requests, nil
}

func writeReport(path string, reports []model.Report) error {
	return writeFile(path, func(file *os.File) error {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			return export.WriteCSV(file, reports)
		}
		return export.WriteXLSX(file, reports)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// printReports outputs one line per item
func printReports(reports []model.Report) {
	fmt.Println("\n===== PRICES =====")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tITEM\tQTY\tFAST\tFAIR\tGREEDY\tREGIME\tLISTINGS\tANCHORS")
	for _, r := range reports {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ItemID, r.ItemName, r.MyQuantity,
			bot.FormatMoney(r.FastSellPrice), bot.FormatMoney(r.FairPrice), bot.FormatMoney(r.GreedyPrice),
			r.CleanRegime, r.NumListings, r.NumSuspectedAnchors)
	}
	w.Flush()
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
