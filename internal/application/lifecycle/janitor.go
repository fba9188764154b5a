package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

// DefaultSchedule runs a sweep every ten minutes.
const DefaultSchedule = "@every 10m"

// Janitor runs Service.Sweep on a cron schedule.  Overlapping runs are
// skipped.
type Janitor struct {
	svc      Service
	schedule string
	logger   logging.Logger

	mu      sync.Mutex
	c       *cron.Cron
	entry   cron.EntryID
	running bool
}

// NewJanitor parses schedule (standard five-field spec or a descriptor such
// as "@every 10m") and returns a stopped Janitor.
func NewJanitor(svc Service, schedule string, logger logging.Logger) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("lifecycle: invalid cleanup schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Janitor{svc: svc, schedule: schedule, logger: logger.Named("janitor")}, nil
}

// Start schedules the sweep.  Every run is bounded by ctx.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}

	cl := cronLogger{j.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	id, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("lifecycle: failed to schedule sweep: %w", err)
	}
	c.Start()

	j.c, j.entry, j.running = c, id, true
	j.logger.Info("workspace janitor started", logging.String("schedule", j.schedule))
	return nil
}

// RunOnce performs one sweep and logs its outcome.
func (j *Janitor) RunOnce(ctx context.Context) *SweepReport {
	report, err := j.svc.Sweep(ctx)
	if err != nil {
		j.logger.Error("workspace sweep failed", logging.Err(err))
	}
	return report
}

// Stop unschedules the sweep and waits for a running one to finish or ctx
// to expire.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return nil
	}
	c := j.c
	j.running = false
	j.mu.Unlock()

	select {
	case <-c.Stop().Done():
		j.logger.Info("workspace janitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	l logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(kvFields(keysAndValues), logging.Err(err))...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logging.Any(key, kv[i+1]))
	}
	return fields
}

//Personal.AI order the ending
