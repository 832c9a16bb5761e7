package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gompdf/folio"
	"github.com/gompdf/folio/internal/config"
	"github.com/gompdf/folio/internal/measure/browser"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/reflow"
	"github.com/gompdf/folio/internal/server"
)

type flags struct {
	input, header, footer, output string
	configPath                    string
	markdown, watch, serve        bool
	addr                          string
	verbose, json                 bool
	browser                       bool
	styles                        string
}

func main() {
	var f flags
	flag.StringVar(&f.input, "input", "", "Input HTML or Markdown file path")
	flag.StringVar(&f.header, "header", "", "Header HTML repeated on every page")
	flag.StringVar(&f.footer, "footer", "", "Footer HTML repeated on every page")
	flag.StringVar(&f.output, "output", "", "Output PDF file path")
	flag.StringVar(&f.configPath, "config", "", "YAML config file")
	flag.StringVar(&f.styles, "css", "", "Comma-separated extra stylesheets")
	flag.BoolVar(&f.markdown, "markdown", false, "Treat the input as Markdown")
	flag.BoolVar(&f.watch, "watch", false, "Re-render when an input file changes")
	flag.BoolVar(&f.serve, "serve", false, "Serve a live preview over HTTP")
	flag.StringVar(&f.addr, "addr", "", "Preview server address (overrides config)")
	flag.BoolVar(&f.browser, "browser", false, "Measure in headless Chrome and print the plan")
	flag.BoolVar(&f.verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&f.json, "json-log", false, "Log as JSON")
	flag.Parse()

	if f.input == "" {
		fmt.Fprintln(os.Stderr, "Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}
	if f.output == "" {
		ext := filepath.Ext(f.input)
		f.output = f.input[:len(f.input)-len(ext)] + ".pdf"
	}

	lvl := slog.LevelInfo
	if f.verbose {
		lvl = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	if f.json {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("folio failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, logger *slog.Logger) error {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return err
		}
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}

	opts := append(cfg.Options(), folio.WithLogger(logger), folio.WithDebug(f.verbose))
	converter := folio.New(opts...)

	src := folio.Sources{
		Body:        f.input,
		Header:      f.header,
		Footer:      f.footer,
		Stylesheets: cfg.Document.Stylesheets,
		Markdown:    f.markdown,
	}
	if f.styles != "" {
		src.Stylesheets = append(src.Stylesheets, strings.Split(f.styles, ",")...)
	}

	switch {
	case f.browser:
		return measureInBrowser(ctx, converter, src, logger)
	case f.serve:
		return serve(ctx, converter, src, cfg.Server.Addr, f.watch, logger)
	case f.watch:
		return watchAndConvert(ctx, converter, src, f.output, logger)
	}

	result, err := converter.ConvertFile(ctx, src, f.output)
	if err != nil {
		return err
	}
	logger.Info("converted", "input", f.input, "output", f.output, "pages", result.Plan.PageCount())
	return nil
}

func watchAndConvert(ctx context.Context, converter *folio.Converter, src folio.Sources, output string, logger *slog.Logger) error {
	convert := func() {
		result, err := converter.ConvertFile(ctx, src, output)
		if err != nil {
			logger.Error("convert failed", "error", err)
			return
		}
		logger.Info("converted", "output", output, "pages", result.Plan.PageCount())
	}
	convert()
	return watchFiles(ctx, src.Paths(), 500*time.Millisecond, logger, convert)
}

func serve(ctx context.Context, converter *folio.Converter, src folio.Sources, addr string, watch bool, logger *slog.Logger) error {
	doc, err := folio.ReadDocument(ctx, src, converter.Options().ResourcePaths...)
	if err != nil {
		return err
	}
	session, err := converter.OpenSession(ctx, doc)
	if err != nil {
		return err
	}
	defer session.Close()

	if watch {
		go func() {
			err := watchFiles(ctx, src.Paths(), 500*time.Millisecond, logger, func() {
				doc, err := folio.ReadDocument(ctx, src, converter.Options().ResourcePaths...)
				if err == nil {
					err = session.Reload(ctx, doc)
				}
				if err != nil {
					logger.Error("reload failed", "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watch stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(session, logger),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("preview server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	return nil
}

func measureInBrowser(ctx context.Context, converter *folio.Converter, src folio.Sources, logger *slog.Logger) error {
	doc, err := folio.ReadDocument(ctx, src, converter.Options().ResourcePaths...)
	if err != nil {
		return err
	}
	if doc.Markdown {
		return fmt.Errorf("failed to measure: -browser takes HTML input")
	}

	m, err := browser.New(ctx, browser.Config{Logger: logger})
	if err != nil {
		return err
	}
	defer m.Close()

	frame := converter.Frame()
	page, err := m.Open(ctx, browser.Assemble(doc.Header, doc.Body, doc.Footer, doc.Stylesheets), frame.ContentWidth())
	if err != nil {
		return err
	}
	defer page.Close()

	opts := converter.Options()
	engine := pagination.NewEngine()
	engine.SetOptions(pagination.Options{
		PageHeight:   frame.PrintableHeight(),
		SafetyBuffer: opts.SafetyBuffer,
		BreakEpsilon: opts.BreakEpsilon,
	})
	engine.SetLogger(logger)

	measureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	plan, err := page.Measure(measureCtx, engine, opts.PollInterval, reflow.Options{
		Settle:   opts.Settle,
		Debounce: opts.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
