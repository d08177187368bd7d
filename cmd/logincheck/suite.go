package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/umputun/logincheck/pkg/config"
	"github.com/umputun/logincheck/pkg/git"
	"github.com/umputun/logincheck/pkg/history"
	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/notify"
	"github.com/umputun/logincheck/pkg/progress"
	"github.com/umputun/logincheck/pkg/report"
	"github.com/umputun/logincheck/pkg/runner"
	"github.com/umputun/logincheck/pkg/watch"
	"github.com/umputun/logincheck/pkg/web"
)

// suite wires one or more runs of the cases table to logging, dashboard, history,
// report and notifications.
type suite struct {
	cfg      *config.Config
	opts     opts
	log      *progress.Logger
	colors   *progress.Colors
	verifier runner.Verifier
	meta     report.Meta

	server   *web.Server     // nil without --serve
	store    *history.Store  // nil without history_dsn
	notifier *notify.Service // nil without notify channels
	cancel   context.CancelFunc
}

func newSuite(ctx context.Context, cfg *config.Config, o opts, log *progress.Logger, colors *progress.Colors,
	v runner.Verifier, meta report.Meta, notifier *notify.Service) (*suite, error) {
	s := &suite{cfg: cfg, opts: o, log: log, colors: colors, verifier: v, meta: meta, notifier: notifier, cancel: func() {}}

	if cfg.HistoryDSN != "" {
		var err error
		if s.store, err = history.Open(ctx, cfg.HistoryDSN); err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	if o.Serve {
		srv, err := web.NewServer(web.ServerConfig{
			Port:      o.Port,
			Target:    cfg.BaseURL,
			Engine:    meta.Engine,
			CasesFile: cfg.CasesFile,
			Revision:  s.meta.Revision,
		}, web.NewBuffer(web.DefaultBufferSize))
		if err != nil {
			s.close()
			return nil, fmt.Errorf("init web dashboard: %w", err)
		}
		s.server = srv
		srvCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go func() {
			if srvErr := srv.Start(srvCtx); srvErr != nil {
				log.Error("web server: %v", srvErr)
			}
		}()
		colors.Info().Printf("web dashboard: http://localhost:%d\n", o.Port)
	}
	return s, nil
}

// run executes the table once and publishes the outcome everywhere.
func (s *suite) run(ctx context.Context, table []login.Case) runner.Summary {
	listeners := runner.Listeners{s.log}
	var bar *progress.Bar
	if s.opts.Quiet {
		bar = progress.NewBar(len(table)*max(s.cfg.Repeat, 1), os.Stderr)
		listeners = append(listeners, bar)
	}
	if s.server != nil {
		s.server.RunStarted(len(table) * max(s.cfg.Repeat, 1))
		listeners = append(listeners, s.server)
	}

	r := runner.New(runner.Config{Parallel: s.cfg.Parallel, Repeat: s.cfg.Repeat, CaseTimeout: s.cfg.CaseTimeout()},
		s.verifier, listeners)
	sum := r.Run(ctx, table)

	if bar != nil {
		if err := bar.Finish(); err != nil {
			s.log.Warn("progress bar: %v", err)
		}
	}
	if s.server != nil {
		s.server.RunFinished(sum)
	}

	changes := s.record(sum)
	s.printSummary(sum, changes)
	s.writeReport(sum)
	s.notifier.Send(context.WithoutCancel(ctx), s.notifyResult(sum, changes))
	return sum
}

// watch runs the table, then runs it again on every change of the cases file until ctx is done.
func (s *suite) watch(ctx context.Context, table []login.Case, only string) error {
	if s.cfg.CasesFile == "" {
		return errors.New("--watch needs a cases file")
	}
	w, err := watch.New([]string{s.cfg.CasesFile}, 0)
	if err != nil {
		return fmt.Errorf("watch cases: %w", err)
	}

	s.run(ctx, table)
	s.colors.Info().Printf("\nwatching %s for changes, ctrl+c to stop\n", s.cfg.CasesFile)
	return w.Run(ctx, func(ctx context.Context, _ []string) {
		updated, err := loadCases(s.cfg.CasesFile, only)
		if err != nil {
			s.log.Error("reload cases: %v", err)
			return
		}
		s.log.Print("cases changed, running %d cases", len(updated))
		s.run(ctx, updated)
	})
}

// record stores the run in history and returns changes since the previous run.
func (s *suite) record(sum runner.Summary) []history.Change {
	if s.store == nil {
		return nil
	}
	ctx := context.Background() // a canceled run is still recorded
	changes, err := s.store.Changed(ctx, sum)
	if err != nil {
		s.log.Warn("compare with history: %v", err)
	}
	if err := s.store.Record(ctx, sum); err != nil {
		s.log.Warn("record history: %v", err)
	}
	return changes
}

func (s *suite) printSummary(sum runner.Summary, changes []history.Change) {
	for _, c := range changes {
		s.log.Warn("changed since last run: %s", c)
	}
	for _, c := range sum.Flaky() {
		s.log.Warn("flaky: %s observed %v", c.Case.Name, c.Observed())
	}

	clr := s.colors.Pass()
	verdict := "PASSED"
	if !sum.OK() {
		clr, verdict = s.colors.Fail(), "FAILED"
	}
	s.log.Print("run %s finished in %s", sum.RunID, sum.Duration.Round(time.Millisecond))
	if failures := notify.FromSummary(sum).Failures; len(failures) > 0 {
		s.log.Detail(failures...)
	}
	clr.Printf("\n%s: %d passed, %d failed, %d errors\n", verdict, sum.Passed(), sum.Failed(), sum.Errored())
}

func (s *suite) writeReport(sum runner.Summary) {
	if s.cfg.ReportFile == "" && !s.opts.Show {
		return
	}
	md := report.Markdown(sum, s.meta)
	if s.cfg.ReportFile != "" {
		if err := report.WriteFile(s.cfg.ReportFile, md); err != nil {
			s.log.Error("write report: %v", err)
		} else {
			s.log.Print("report written to %s", s.cfg.ReportFile)
		}
	}
	if s.opts.Show {
		out, err := report.Render(md, s.opts.NoColor)
		if err != nil {
			s.log.Warn("render report: %v", err)
			out = md
		}
		fmt.Print(out)
	}
}

func (s *suite) notifyResult(sum runner.Summary, changes []history.Change) notify.Result {
	r := withMeta(notify.FromSummary(sum), s.meta)
	for _, c := range changes {
		r.Changes = append(r.Changes, c.String())
	}
	return r
}

// withMeta fills the run environment of a notification.
func withMeta(r notify.Result, meta report.Meta) notify.Result {
	r.Target, r.Engine, r.Revision, r.CasesFile = meta.Target, meta.Engine, meta.Revision, meta.CasesFile
	if r.CasesFile == "" {
		r.CasesFile = "(built-in)"
	}
	return r
}

func (s *suite) close() {
	s.cancel()
	if s.server != nil {
		if err := s.server.Stop(); err != nil {
			s.log.Warn("stop web server: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("close history: %v", err)
		}
	}
}

// revisionOf describes the git revision of the cases file, or of the working
// directory for the built-in table. errors only cost the header line.
func revisionOf(casesFile string, log *progress.Logger) string {
	path := "."
	if casesFile != "" {
		path = filepath.Dir(casesFile)
	}
	info, err := git.Describe(path)
	if err != nil {
		log.Warn("read git revision: %v", err)
		return ""
	}
	return info.String()
}
