// Package main provides logincheck, a data-driven login verifier for saucedemo-style sites.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/logincheck/pkg/browser"
	"github.com/umputun/logincheck/pkg/cases"
	"github.com/umputun/logincheck/pkg/config"
	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/notify"
	"github.com/umputun/logincheck/pkg/progress"
	"github.com/umputun/logincheck/pkg/report"
)

// opts holds all command-line options. unset options fall back to the config file.
type opts struct {
	Cases     string `short:"c" long:"cases" env:"LOGINCHECK_CASES" description:"cases table (yaml), built-in table if empty"`
	Only      string `short:"o" long:"only" description:"run only cases whose name matches this regexp"`
	Engine    string `short:"e" long:"engine" env:"LOGINCHECK_ENGINE" description:"browser engine: playwright, rod or chromedp"`
	Parallel  int    `short:"j" long:"parallel" env:"LOGINCHECK_PARALLEL" description:"number of cases run concurrently"`
	Repeat    int    `long:"repeat" env:"LOGINCHECK_REPEAT" description:"attempts per case, differing outcomes are flaky"`
	Headed    bool   `long:"headed" description:"show the browser window"`
	Install   bool   `long:"install" description:"install playwright driver and chromium before running"`
	Probe     bool   `long:"probe" description:"only check that the login form is reachable"`
	Report    string `short:"r" long:"report" env:"LOGINCHECK_REPORT" description:"write a markdown report to this file"`
	Show      bool   `long:"show" description:"print the rendered report after the run"`
	History   string `long:"history" env:"LOGINCHECK_HISTORY" description:"history database, sqlite file or mysql://dsn"`
	Watch     bool   `short:"w" long:"watch" description:"re-run when the cases file changes"`
	Quiet     bool   `short:"q" long:"quiet" description:"show a progress bar instead of per-case lines"`
	ConfigDir string `long:"config-dir" env:"LOGINCHECK_CONFIG_DIR" description:"config directory (default ~/.config/logincheck)"`
	DumpCases bool   `long:"dump-cases" description:"print the built-in cases table and exit"`
	NoColor   bool   `long:"no-color" env:"NO_COLOR" description:"disable color output"`
	Version   bool   `short:"v" long:"version" description:"print version and exit"`
	Serve     bool   `short:"s" long:"serve" description:"start web dashboard for live results"`
	Port      int    `short:"p" long:"port" default:"8080" env:"LOGINCHECK_PORT" description:"web dashboard port"`
}

var revision = "unknown"

// newEngine launches the browser, tests replace it.
var newEngine = browser.New

// errSuiteFailed is returned when at least one case did not pass.
var errSuiteFailed = errors.New("login suite failed")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		fmt.Printf("logincheck %s\n", revision)
		os.Exit(0)
	}
	if o.DumpCases {
		_, _ = os.Stdout.Write(cases.DefaultYAML())
		os.Exit(0)
	}

	restore := disableCtrlCEcho()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, o)
	cancel()
	restore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load(o.ConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err = applyOverrides(cfg, o); err != nil {
		return err
	}

	table, err := loadCases(cfg.CasesFile, o.Only)
	if err != nil {
		return err
	}

	colors := progress.NewColors(cfg.Colors)
	log, err := progress.NewLogger(progress.Config{
		CasesFile: cfg.CasesFile,
		Target:    cfg.BaseURL,
		Engine:    cfg.Engine,
		Cases:     len(table),
		Quiet:     o.Quiet,
		NoColor:   o.NoColor,
	}, colors)
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()

	meta := report.Meta{Target: cfg.BaseURL, Engine: cfg.Engine, CasesFile: cfg.CasesFile, Revision: revisionOf(cfg.CasesFile, log)}
	notifier, err := notify.New(cfg.NotifyParams(), log)
	if err != nil {
		return fmt.Errorf("init notifications: %w", err)
	}
	// errors before the first run still reach on_error channels
	abort := func(err error) error {
		notifier.Send(context.WithoutCancel(ctx), withMeta(notify.Result{Status: "failure", Error: err.Error()}, meta))
		return err
	}

	engine, err := newEngine(ctx, browser.Config{
		Engine:        cfg.Engine,
		Headless:      cfg.Headless,
		SlowMo:        cfg.SlowMo(),
		ActionTimeout: cfg.ActionTimeout(),
		Install:       o.Install,
	})
	if err != nil {
		return abort(fmt.Errorf("launch browser: %w", err))
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			log.Warn("close browser: %v", cerr)
		}
	}()

	verifier := login.NewVerifier(engine, login.Config{Target: cfg.Target(), ObserveTimeout: cfg.ObserveTimeout()})
	if o.Probe {
		if err := verifier.Probe(ctx); err != nil {
			return abort(fmt.Errorf("probe %s: %w", cfg.BaseURL, err))
		}
		colors.Pass().Printf("login form at %s is reachable\n", cfg.BaseURL)
		return nil
	}

	meta.Engine = engine.Name()
	s, err := newSuite(ctx, cfg, o, log, colors, verifier, meta, notifier)
	if err != nil {
		return abort(err)
	}
	defer s.close()

	colors.Info().Printf("checking %d cases against %s with %s\n", len(table), cfg.BaseURL, engine.Name())
	colors.Info().Printf("progress log: %s\n\n", log.Path())

	if o.Watch {
		return s.watch(ctx, table, o.Only)
	}

	sum := s.run(ctx, table)
	if !sum.OK() {
		return fmt.Errorf("%w: %d failed, %d errors", errSuiteFailed, sum.Failed(), sum.Errored())
	}
	return nil
}

// applyOverrides copies explicitly given options over config values.
func applyOverrides(cfg *config.Config, o opts) error {
	if o.Cases != "" {
		cfg.CasesFile = o.Cases
	}
	if o.Engine != "" {
		cfg.Engine = o.Engine
	}
	name, err := browser.ParseEngine(cfg.Engine)
	if err != nil {
		return err
	}
	cfg.Engine = name

	if o.Parallel < 0 || o.Repeat < 0 {
		return errors.New("parallel and repeat must be positive")
	}
	if o.Parallel > 0 {
		cfg.Parallel = o.Parallel
	}
	if o.Repeat > 0 {
		cfg.Repeat = o.Repeat
	}
	if o.Headed {
		cfg.Headless = false
	}
	if o.Report != "" {
		cfg.ReportFile = o.Report
	}
	if o.History != "" {
		cfg.HistoryDSN = o.History
	}
	return nil
}

// loadCases reads the cases file, or the built-in table, and applies the name filter.
func loadCases(path, only string) ([]login.Case, error) {
	table := cases.Default()
	if path != "" {
		var err error
		if table, err = cases.Load(path); err != nil {
			return nil, err
		}
	}
	return cases.Filter(table, only)
}
