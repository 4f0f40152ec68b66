// Package schedule runs named repeating tasks on cron schedules.
// A task never overlaps with itself: if a run is still in progress when the next activation
// arrives, that activation is skipped and the task simply runs again on the following one.
package schedule

import (
	"context"
	"errors"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateTask is returned when a task name is registered twice.
	ErrDuplicateTask = errors.New("task already registered")
	// ErrUnknownTask is returned when the named task is not registered.
	ErrUnknownTask = errors.New("task not registered")
)

// Task is a unit of repeating work. The context is cancelled when the scheduler stops.
type Task func(ctx context.Context)

type entry struct {
	id   cron.EntryID
	task Task
	job  cron.Job
}

// Scheduler owns a set of named repeating tasks.
type Scheduler struct {
	logger *zap.Logger

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	entries     map[string]*entry
	entriesLock sync.Mutex
}

// NewScheduler creates a new scheduler. Nothing runs until Start is called,
// although RunNow can be used to drive tasks synchronously before that.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := &cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		ctx:     ctx,
		cancel:  cancel,
		entries: map[string]*entry{},
	}
}

// Add registers a task under the supplied name.
func (s *Scheduler) Add(name string, schedule cron.Schedule, task Task) error {
	s.entriesLock.Lock()
	defer s.entriesLock.Unlock()

	if _, ok := s.entries[name]; ok {
		return ErrDuplicateTask
	}

	e := &entry{
		task: task,
	}
	// The skip wrapper is built once per task so that RunNow and the cron activations
	// share the same in-progress guard.
	e.job = cron.SkipIfStillRunning(&cronLogger{logger: s.logger.With(zap.String("task", name))})(
		cron.FuncJob(func() {
			e.task(s.ctx)
		}),
	)
	e.id = s.cron.Schedule(schedule, e.job)
	s.entries[name] = e

	s.logger.Debug("task added",
		zap.String("task", name),
	)
	return nil
}

// Reschedule replaces the schedule of an existing task, keeping its in-progress guard.
func (s *Scheduler) Reschedule(name string, schedule cron.Schedule) error {
	s.entriesLock.Lock()
	defer s.entriesLock.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return ErrUnknownTask
	}

	s.cron.Remove(e.id)
	e.id = s.cron.Schedule(schedule, e.job)

	s.logger.Debug("task rescheduled",
		zap.String("task", name),
	)
	return nil
}

// Cancel removes the task. A run already in progress is allowed to complete.
func (s *Scheduler) Cancel(name string) error {
	s.entriesLock.Lock()
	defer s.entriesLock.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return ErrUnknownTask
	}

	s.cron.Remove(e.id)
	delete(s.entries, name)
	return nil
}

// RunNow runs the task on the calling goroutine, unless it is already running.
func (s *Scheduler) RunNow(name string) error {
	s.entriesLock.Lock()
	e, ok := s.entries[name]
	s.entriesLock.Unlock()

	if !ok {
		return ErrUnknownTask
	}

	e.job.Run()
	return nil
}

// Start begins running the tasks on their schedules in the background.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started")
	s.cron.Start()
}

// Stop halts further activations, cancels the task context and waits for running tasks to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	logger *zap.Logger
}

// Info implements cron.Logger.
func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

// Error implements cron.Logger.
func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
