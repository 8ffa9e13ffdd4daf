package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SignalBench/internal/collector"
	"SignalBench/internal/metrics"
	"SignalBench/internal/model"
	"SignalBench/internal/notifier"
	"SignalBench/internal/pipeline"
	"SignalBench/internal/recorder"
)

// ErrBusy is returned by RunNow while another run is in progress.
var ErrBusy = errors.New("a run is already in progress")

// Source supplies the bar series for a run.
type Source interface {
	Collect(ctx context.Context) ([]model.PriceBar, error)
}

// Runner computes a run from a bar series.
type Runner interface {
	Run(ctx context.Context, symbol string, bars []model.PriceBar) (*model.RunResult, error)
}

type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the research pipeline on a cron schedule and on demand.
// Notifier, Metrics and Health are optional.
type Scheduler struct {
	Cron     *cron.Cron
	Source   Source
	Symbol   string
	Runner   Runner
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus
	Ctx      context.Context

	running sync.Mutex
	mu      sync.RWMutex
	last    *model.RunResult
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, src Source, symbol string, runner Runner, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Source:   src,
		Symbol:   symbol,
		Runner:   runner,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register schedules the research run on spec (seconds field first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Last returns the most recent successful run, or nil.
func (s *Scheduler) Last() *model.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) runTask() {
	if _, err := s.RunNow(s.Ctx); err != nil && !errors.Is(err, ErrBusy) {
		log.Printf("[ERROR] scheduled run: %v", err)
	}
}

// RunNow collects bars, runs the pipeline, then records and reports the
// outcome. Overlapping calls return ErrBusy.
func (s *Scheduler) RunNow(ctx context.Context) (*model.RunResult, error) {
	if !s.running.TryLock() {
		log.Println("[WARN] run skipped: previous run still in progress")
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	log.Printf("[INFO] running %s", s.Symbol)
	if s.Metrics != nil {
		s.Metrics.RunsTotal.Inc()
	}

	res, err := s.run(ctx)
	if err != nil {
		s.fail(ctx, err)
		return nil, err
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.RunSucceeded(res)
	}
	if s.Health != nil {
		s.Health.SetRun(res.ID, res.StartedAt, nil)
	}
	if err := s.Recorder.RecordRun(res); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	s.trySend(ctx, notifier.FormatRunReport(res))
	return res, nil
}

func (s *Scheduler) run(ctx context.Context) (*model.RunResult, error) {
	bars, err := s.Source.Collect(ctx)
	if errors.Is(err, collector.ErrNoBars) {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrMissingInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	return s.Runner.Run(ctx, s.Symbol, bars)
}

func (s *Scheduler) fail(ctx context.Context, err error) {
	kind := pipeline.Kind(err)
	log.Printf("[ERROR] run %s failed (%s): %v", s.Symbol, kind, err)
	if s.Metrics != nil {
		s.Metrics.RunFailed(kind)
	}
	if s.Health != nil {
		s.Health.SetRun("", time.Now(), err)
	}
	if recErr := s.Recorder.RecordFailure(s.Symbol, kind, err); recErr != nil {
		log.Printf("[ERROR] record failure: %v", recErr)
	}
	s.trySend(ctx, notifier.FormatFailure(s.Symbol, kind, err))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		// Commands in group chats arrive as /run@BotName.
		name, _, _ = strings.Cut(fields[0], "@")
	}
	switch name {
	case "/run":
		if _, err := s.RunNow(ctx); errors.Is(err, ErrBusy) {
			return "A run is already in progress."
		}
		// The report or failure has already been sent.
		return ""
	case "/last":
		last := s.Last()
		if last == nil {
			return "No successful run yet. Send /run to start one."
		}
		return notifier.FormatRunReport(last)
	case "/history":
		h, ok := s.Recorder.(recorder.History)
		if !ok {
			return "Run history is not recorded."
		}
		runs, err := h.RecentRuns(10)
		if err != nil {
			log.Printf("[ERROR] read history: %v", err)
			return "Could not read run history."
		}
		return notifier.FormatHistory(runs)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	var err error
	if rs, ok := s.Notifier.(retrySender); ok {
		err = rs.SendWithRetry(ctx, text, 3)
	} else {
		err = s.Notifier.Send(ctx, text)
	}
	if err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
