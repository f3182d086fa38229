// Command pagebench runs a synthetic page workload against the cache and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/config"
	"github.com/IvanBrykalov/pagecache/internal/logger"
	pmet "github.com/IvanBrykalov/pagecache/metrics/prom"
	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/policy"
)

// CLI defines the command-line interface. Flags left at their zero value
// (or -1 where zero is meaningful) keep the value from the config file.
type CLI struct {
	Config string `name:"config" short:"c" type:"path" help:"YAML config file (defaults are used when empty)."`

	Capacity int    `name:"cap" help:"Cache capacity in pages."`
	Policy   string `name:"policy" help:"Eviction policy: fifo, lfu, lru or mru."`
	Attempts int    `name:"attempts" help:"Maximum fetch attempts per access."`

	Store string `name:"store" help:"Backing store: mem, file or sqlite."`
	Path  string `name:"path" help:"Store file path (file) or DSN (sqlite)."`

	Workers  int           `name:"workers" help:"Number of worker goroutines."`
	Pages    uint64        `name:"pages" help:"Page id space size."`
	Reads    int           `name:"reads" default:"-1" help:"Read percentage [0..100]."`
	Duration time.Duration `name:"duration" help:"Benchmark duration."`
	Zipf     float64       `name:"zipf" default:"-1" help:"Zipf skew s > 1, or 0 for uniform ids."`
	Seed     int64         `name:"seed" help:"Random seed (0 = time based)."`

	MetricsAddr string `name:"http" help:"Serve Prometheus metrics at addr (e.g. :8080)."`
	PprofAddr   string `name:"pprof" help:"Serve pprof at addr (e.g. :6060)."`
	LogLevel    string `name:"log-level" help:"Log level: debug, info, warn or error."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pagebench"),
		kong.Description("Synthetic read/write workload for the page cache"),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(cli.Run(os.Stdout))
}

// Run loads the configuration, applies flag overrides and runs the workload.
func (c *CLI) Run(out io.Writer) error {
	cfg := config.DefaultConfig()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return err
		}
	}
	if err := c.apply(&cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if c.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", zap.String("addr", c.PprofAddr))
			log.Warn("pprof server stopped", zap.Error(http.ListenAndServe(c.PprofAddr, nil)))
		}()
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rep, err := run(context.Background(), cfg, log, seed)
	if err != nil {
		return err
	}
	rep.print(out, cfg, seed)
	return nil
}

// apply copies every flag that was set over cfg and re-validates.
func (c *CLI) apply(cfg *config.Config) error {
	if c.Capacity != 0 {
		cfg.Cache.Capacity = c.Capacity
	}
	if c.Policy != "" {
		k, err := policy.ParseKind(c.Policy)
		if err != nil {
			return err
		}
		cfg.Cache.Policy = k
	}
	if c.Attempts != 0 {
		cfg.Cache.MaxFetchAttempts = c.Attempts
	}
	if c.Store != "" {
		cfg.Store.Kind = c.Store
	}
	if c.Path != "" {
		cfg.Store.Path = c.Path
	}
	if c.Workers != 0 {
		cfg.Load.Workers = c.Workers
	}
	if c.Pages != 0 {
		cfg.Load.Pages = c.Pages
	}
	if c.Reads >= 0 {
		cfg.Load.ReadPct = c.Reads
	}
	if c.Duration != 0 {
		cfg.Load.Duration = c.Duration
	}
	if c.Zipf >= 0 {
		cfg.Load.Zipf = c.Zipf
	}
	if c.MetricsAddr != "" {
		cfg.Metrics.Addr = c.MetricsAddr
	}
	if c.LogLevel != "" {
		cfg.Logger.Level = c.LogLevel
	}
	return cfg.Validate()
}

// report aggregates worker counters.
type report struct {
	elapsed            time.Duration
	ops, reads, writes uint64
	exhausted          uint64
	stats              cache.Stats
}

func (r report) print(w io.Writer, cfg config.Config, seed int64) {
	hitRate := 0.0
	if n := r.stats.Hits + r.stats.Misses; n > 0 {
		hitRate = float64(r.stats.Hits) / float64(n) * 100
	}
	fmt.Fprintf(w, "policy=%s cap=%d store=%s workers=%d pages=%d zipf=%v dur=%v seed=%d\n",
		cfg.Cache.Policy, cfg.Cache.Capacity, cfg.Store.Kind, cfg.Load.Workers,
		cfg.Load.Pages, cfg.Load.Zipf, r.elapsed, seed)
	fmt.Fprintf(w, "ops=%d (%.0f ops/s)  reads=%d  writes=%d  exhausted=%d\n",
		r.ops, float64(r.ops)/r.elapsed.Seconds(), r.reads, r.writes, r.exhausted)
	fmt.Fprintf(w, "hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d  flushes=%d  resident=%d\n",
		r.stats.Hits, r.stats.Misses, hitRate, r.stats.Evictions, r.stats.Flushes, r.stats.Resident)
}

// run builds the store and cache described by cfg and drives them for
// cfg.Load.Duration. All dirty pages are flushed before it returns.
func run(ctx context.Context, cfg config.Config, log *zap.Logger, seed int64) (report, error) {
	st, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return report{}, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()

	var metrics cache.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = pmet.New(nil, "pagecache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", zap.String("addr", cfg.Metrics.Addr))
			log.Warn("metrics server stopped", zap.Error(http.ListenAndServe(cfg.Metrics.Addr, nil)))
		}()
	}

	m, err := cache.NewManager(cache.Options{
		Capacity:         cfg.Cache.Capacity,
		Policy:           cfg.Cache.Policy,
		MaxFetchAttempts: cfg.Cache.MaxFetchAttempts,
		Store:            st,
		Metrics:          metrics,
		Logger:           log,
	})
	if err != nil {
		return report{}, err
	}

	var reads, writes, exhausted, total atomic.Uint64
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Load.Duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(loadCtx)
	for w := 0; w < cfg.Load.Workers; w++ {
		w := w
		g.Go(func() error {
			// Each worker gets its own RNG (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(seed + int64(w)*9973))
			next := pageIDs(r, cfg.Load)
			stamp := make([]byte, 8)

			for gctx.Err() == nil {
				id := next()
				var err error
				total.Add(1)
				if r.Intn(100) < cfg.Load.ReadPct {
					reads.Add(1)
					_, err = m.ReadPageAt(gctx, id, 0, len(stamp))
				} else {
					writes.Add(1)
					r.Read(stamp)
					err = m.WritePageAt(gctx, id, 0, stamp)
				}
				switch {
				case err == nil:
				case errors.Is(err, cache.ErrFetchFailure):
					exhausted.Add(1)
				case gctx.Err() != nil:
					return nil // deadline hit mid-operation
				default:
					return err
				}
			}
			return nil
		})
	}
	werr := g.Wait()
	elapsed := time.Since(start)

	// Flush with a fresh context; loadCtx is already done.
	if err := m.Close(context.WithoutCancel(ctx)); err != nil {
		werr = errors.Join(werr, err)
	}
	return report{
		elapsed:   elapsed,
		ops:       total.Load(),
		reads:     reads.Load(),
		writes:    writes.Load(),
		exhausted: exhausted.Load(),
		stats:     m.Stats(),
	}, werr
}

// pageIDs returns a generator of page ids in [0, load.Pages).
func pageIDs(r *rand.Rand, load config.LoadConfig) func() page.ID {
	if load.Zipf > 1 {
		z := rand.NewZipf(r, load.Zipf, 1, load.Pages-1)
		return func() page.ID { return page.ID(z.Uint64()) }
	}
	return func() page.ID { return page.ID(r.Uint64() % load.Pages) }
}
