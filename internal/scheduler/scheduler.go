package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"garage-site/internal/config"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/generator"
	"garage-site/internal/logger"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Interval names accepted in the schedule settings.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// Reasons reported when a run does not generate anything.
const (
	ReasonDisabled       = "disabled"
	ReasonNotDue         = "not due"
	ReasonAlreadyRunning = "already running"
)

// JobStatus is the outcome of the most recent run.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

var intervals = map[string]time.Duration{
	Daily:   24 * time.Hour,
	Weekly:  7 * 24 * time.Hour,
	Monthly: 30 * 24 * time.Hour,
}

// IntervalDuration returns the length of a named interval. Unknown names are
// treated as weekly.
func IntervalDuration(name string) time.Duration {
	if d, ok := intervals[strings.ToLower(name)]; ok {
		return d
	}
	return intervals[Weekly]
}

// IsDue reports whether a run is due. A schedule that never ran is due.
func IsDue(lastRun *time.Time, interval string, now time.Time) bool {
	if lastRun == nil {
		return true
	}
	return now.Sub(*lastRun) >= IntervalDuration(interval)
}

// NextRun returns when the next run becomes due, or nil when disabled.
func NextRun(state data.ScheduleState, now time.Time) *time.Time {
	if !state.Enabled {
		return nil
	}
	if state.LastRun == nil {
		return &now
	}
	next := state.LastRun.Add(IntervalDuration(state.Interval))
	return &next
}

// PostWriter stores generated posts at the head of the blog.
type PostWriter interface {
	Prepend(ctx context.Context, posts []data.Post) ([]data.Post, error)
}

// OptionsLoader provides the current generator options.
type OptionsLoader interface {
	Load() (data.GeneratorOptions, error)
}

// Result describes one run.
type Result struct {
	Ran       bool        `json:"ran"`
	Reason    string      `json:"reason,omitempty"`
	Generated []data.Post `json:"generated"`
	Failed    []string    `json:"failed"`
	LastRun   *time.Time  `json:"lastRun"`
}

// Status is the schedule as shown to administrators.
type Status struct {
	Enabled     bool       `json:"enabled"`
	Interval    string     `json:"interval"`
	PostsPerRun int        `json:"postsPerRun"`
	Topics      []string   `json:"topics"`
	LastRun     *time.Time `json:"lastRun"`
	NextRun     *time.Time `json:"nextRun"`
	Job         JobStatus  `json:"status"`
	Message     string     `json:"message,omitempty"`
}

// Scheduler generates blog posts when the schedule is due. It has no timer of
// its own; something external calls RunIfDue.
type Scheduler struct {
	store    *data.Store
	posts    PostWriter
	gen      generator.Generator
	settings OptionsLoader
	log      logger.Logger
	delay    time.Duration

	now   func() time.Time
	perm  func(n int) []int
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	job     JobStatus
	message string
}

// New creates a Scheduler.
func New(store *data.Store, posts PostWriter, gen generator.Generator, settings OptionsLoader, cfg config.GeneratorConfig, log logger.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		posts:    posts,
		gen:      gen,
		settings: settings,
		log:      log.With(map[string]interface{}{"component": "scheduler"}),
		delay:    time.Duration(cfg.DelaySeconds) * time.Second,
		now:      time.Now,
		perm:     rand.Perm,
		sleep:    sleepContext,
		job:      StatusIdle,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunIfDue runs the schedule only when it is enabled and due.
func (s *Scheduler) RunIfDue(ctx context.Context) (*Result, error) {
	return s.Run(ctx, false)
}

// Run generates up to postsPerRun posts from distinct random topics. force
// skips the enabled and due checks. lastRun only advances when at least one
// post was stored.
func (s *Scheduler) Run(ctx context.Context, force bool) (*Result, error) {
	s.mu.Lock()
	if s.job == StatusRunning {
		s.mu.Unlock()
		return &Result{Reason: ReasonAlreadyRunning}, nil
	}
	s.job = StatusRunning
	s.mu.Unlock()

	res, err := s.run(ctx, force)

	s.mu.Lock()
	switch {
	case err != nil:
		s.job, s.message = StatusReject, err.Error()
	case res.Ran:
		s.job, s.message = StatusFulfill, fmt.Sprintf("generated %d post(s)", len(res.Generated))
	default:
		s.job, s.message = StatusIdle, res.Reason
	}
	s.mu.Unlock()
	return res, err
}

func (s *Scheduler) run(ctx context.Context, force bool) (*Result, error) {
	state, err := data.ReadObject[data.ScheduleState](s.store, data.ScheduleSettings)
	if err != nil {
		return nil, err
	}
	now := s.now()
	res := &Result{Generated: []data.Post{}, Failed: []string{}, LastRun: state.LastRun}

	if !force {
		if !state.Enabled {
			res.Reason = ReasonDisabled
			return res, nil
		}
		if !IsDue(state.LastRun, state.Interval, now) {
			res.Reason = ReasonNotDue
			return res, nil
		}
	}

	topics := s.pick(state.Topics, state.PostsPerRun)
	if len(topics) == 0 {
		return res, errs.Validation("no topics configured")
	}
	opts, err := s.settings.Load()
	if err != nil {
		return res, err
	}

	s.log.With(map[string]interface{}{"topics": len(topics), "forced": force}).Info("Starting content generation")

	var generated []data.Post
	for i, topic := range topics {
		if i > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				break
			}
		}
		post, err := s.gen.Generate(ctx, topic, opts)
		if err != nil {
			s.log.With(map[string]interface{}{"topic": topic}).Error(err, "Failed to generate post, skipping topic")
			res.Failed = append(res.Failed, topic)
			continue
		}
		generated = append(generated, *post)
	}

	if len(generated) == 0 {
		return res, errs.ExternalService("content generation", errors.New("no posts were generated"))
	}

	// The most recently generated post ends up first, as if each had been
	// prepended on its own.
	for i, j := 0, len(generated)-1; i < j; i, j = i+1, j-1 {
		generated[i], generated[j] = generated[j], generated[i]
	}
	stored, err := s.posts.Prepend(ctx, generated)
	if err != nil {
		return res, err
	}
	res.Generated = stored

	// Re-read so settings changed during the run are not lost.
	latest, err := data.ReadObject[data.ScheduleState](s.store, data.ScheduleSettings)
	if err != nil {
		return res, err
	}
	latest.LastRun = &now
	if err := data.WriteObject(s.store, data.ScheduleSettings, latest); err != nil {
		return res, err
	}

	res.Ran = true
	res.LastRun = &now
	s.log.With(map[string]interface{}{"generated": len(stored), "failed": len(res.Failed)}).Info("Content generation finished")
	return res, nil
}

// pick returns min(n, len(topics)) distinct topics in random order.
func (s *Scheduler) pick(topics []string, n int) []string {
	var clean []string
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if n > len(clean) {
		n = len(clean)
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, i := range s.perm(len(clean))[:n] {
		out = append(out, clean[i])
	}
	return out
}

// Status returns the persisted schedule plus the state of the last run.
func (s *Scheduler) Status() (*Status, error) {
	state, err := data.ReadObject[data.ScheduleState](s.store, data.ScheduleSettings)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	job, msg := s.job, s.message
	s.mu.Unlock()

	topics := state.Topics
	if topics == nil {
		topics = []string{}
	}
	return &Status{
		Enabled:     state.Enabled,
		Interval:    state.Interval,
		PostsPerRun: state.PostsPerRun,
		Topics:      topics,
		LastRun:     state.LastRun,
		NextRun:     NextRun(state, s.now()),
		Job:         job,
		Message:     msg,
	}, nil
}

// UpdateSettings shallow-merges patch into the schedule. lastRun cannot be
// set this way.
func (s *Scheduler) UpdateSettings(patch json.RawMessage) (*Status, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, errs.Validation("payload must be a JSON object")
	}
	delete(fields, "lastRun")
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errs.Internal("failed to encode settings", err)
	}

	state, err := data.ReadObject[data.ScheduleState](s.store, data.ScheduleSettings)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, errs.Validation("payload has fields of the wrong type")
	}

	state.Interval = strings.ToLower(strings.TrimSpace(state.Interval))
	if _, ok := intervals[state.Interval]; !ok {
		return nil, errs.InvalidField("interval", "must be one of daily, weekly, monthly")
	}
	if state.PostsPerRun < 1 || state.PostsPerRun > 10 {
		return nil, errs.InvalidField("postsPerRun", "must be between 1 and 10")
	}
	topics := make([]string, 0, len(state.Topics))
	for _, t := range state.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	state.Topics = topics

	if err := data.WriteObject(s.store, data.ScheduleSettings, state); err != nil {
		return nil, err
	}
	s.log.Info("Schedule settings updated")
	return s.Status()
}
