package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/embiggen/internal/cache"
	"github.com/xxxsen/embiggen/internal/config"
	"github.com/xxxsen/embiggen/internal/expander"
	"github.com/xxxsen/embiggen/internal/server"
	"github.com/xxxsen/embiggen/internal/shortener"
	"github.com/xxxsen/embiggen/internal/transport"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML configuration file")
	serve := flag.Bool("serve", false, "run the HTTP API instead of expanding arguments")
	strict := flag.Bool("strict", false, "report failures instead of falling back")
	redirects := flag.Int("redirects", -1, "redirect budget, -1 uses the configured value")
	timeout := flag.Duration("timeout", 0, "per request timeout, 0 uses the configured value")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger not initialised yet, fallback to stderr
		log.Fatalf("init config failed, err:%v", err)
	}
	logkit := logger.Init(cfg.Log.File, cfg.Log.Level, int(cfg.Log.FileCount),
		int(cfg.Log.FileSize), int(cfg.Log.KeepDays), cfg.Log.Console)
	defer logkit.Sync() //nolint:errcheck

	if cfg.Pprof.Enable {
		startPprofServer(cfg.Pprof.Bind, logkit)
	}

	e, err := buildExpander(cfg)
	if err != nil {
		logkit.Fatal("build expander failed", zap.Error(err))
	}
	expander.SetDefault(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		srv, err := server.New(
			server.WithBind(cfg.Bind),
			server.WithExpander(e),
			server.WithConcurrency(cfg.Concurrency),
		)
		if err != nil {
			logkit.Fatal("initialise server failed", zap.Error(err))
		}
		logkit.Info("embiggen api listening", zap.String("addr", cfg.Bind))
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logkit.Fatal("server error", zap.Error(err))
		}
		logkit.Info("shutdown complete")
		return
	}

	var opts []expander.RequestOption
	if *redirects >= 0 {
		opts = append(opts, expander.WithRedirects(*redirects))
	}
	if *timeout > 0 {
		opts = append(opts, expander.WithTimeout(*timeout))
	}
	inputs := flag.Args()
	if len(inputs) == 0 {
		if inputs, err = readLines(os.Stdin); err != nil {
			logkit.Fatal("read stdin failed", zap.Error(err))
		}
	}
	if failed := run(ctx, os.Stdout, e, inputs, cfg.Concurrency, *strict, opts...); failed > 0 && *strict {
		stop()
		logkit.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func buildExpander(cfg *config.Config) (expander.IExpander, error) {
	set, err := shortener.MakeSet(cfg.Shorteners.Type, cfg.Shorteners.Type, cfg.Shorteners.Data)
	if err != nil {
		return nil, fmt.Errorf("make shortener set failed, type:%s, err:%w", cfg.Shorteners.Type, err)
	}
	client := transport.New(transport.WithUserAgent(cfg.UserAgent))
	client = transport.WithRateLimit(client, cfg.RateLimit.QPS, cfg.RateLimit.Burst)

	var e expander.IExpander = expander.New(
		expander.WithConfig(expander.Config{
			Redirects:  cfg.Redirects,
			Timeout:    cfg.TimeoutDuration(),
			Shorteners: set,
		}),
		expander.WithHeadClient(client),
	)
	store, err := cache.MakeStore(cache.Options{
		Type: cfg.Cache.Type,
		Size: cfg.Cache.Size,
		Redis: cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("make cache store failed, err:%w", err)
	}
	return expander.TryEnableExpanderCache(e, store, cfg.CacheTTL()), nil
}

// run prints one line per input and returns the number of failed entries.
func run(ctx context.Context, w io.Writer, e expander.IExpander, inputs []string, concurrency int, strict bool, opts ...expander.RequestOption) int {
	failed := 0
	uris := make([]*url.URL, 0, len(inputs))
	for _, raw := range inputs {
		u, err := url.Parse(raw)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\terror: %v\n", raw, raw, err)
			failed++
			continue
		}
		uris = append(uris, u)
	}
	for _, res := range expander.ExpandAll(ctx, e, uris, concurrency, strict, opts...) {
		if res.Err != nil {
			fmt.Fprintf(w, "%s\t%s\terror: %v\n", res.Original, expander.Fold(res.Original, res.Expanded, res.Err), res.Err)
			failed++
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", res.Original, res.Expanded)
	}
	return failed
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
