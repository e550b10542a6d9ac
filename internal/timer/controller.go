package timer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/akashic/internal/clock"
	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timeline"
)

// DefaultStopTimeout bounds the store write the watchdog performs when a
// deadline passes. User-initiated stops use the caller's context.
const DefaultStopTimeout = 5 * time.Second

// Store is the persistence surface the controller depends on.
// Implemented by *store.Store.
type Store interface {
	timeline.Source

	FindOrCreateTag(ctx context.Context, name string) (store.Tag, error)
	InsertSliceWithContext(ctx context.Context, sc store.SliceContext) (int64, error)
	Slice(ctx context.Context, id int64) (store.Slice, error)
	RemoveSlice(ctx context.Context, id int64) error
	UpdateSlice(ctx context.Context, slice store.Slice) error
	UpdateSliceTags(ctx context.Context, sliceID int64, names []string) error
	UpdateSliceDescription(ctx context.Context, sliceID int64, text string) error
}

// StartOptions configures a new timer.
type StartOptions struct {
	// Duration arms the watchdog when positive. Zero means run until stopped.
	Duration time.Duration

	// Tags are raw tag names. Names that cannot be resolved are logged and
	// dropped; they never fail the start.
	Tags []string

	// Description is trimmed; empty means no description.
	Description string
}

// AutoStopHook is called after the watchdog has persisted a timer.
// It runs on the watchdog goroutine without the controller lock held.
type AutoStopHook func(Snapshot)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source. Defaults to clock.System.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) {
		ctl.clock = c
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) {
		ctl.logger = l
	}
}

// WithTokenGenerator sets the timer token source. Defaults to UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(ctl *Controller) {
		ctl.tokens = g
	}
}

// WithAutoStopHook registers a callback for watchdog-initiated stops.
func WithAutoStopHook(h AutoStopHook) Option {
	return func(ctl *Controller) {
		ctl.onAutoStop = h
	}
}

// WithStopTimeout bounds the watchdog's store write.
func WithStopTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		ctl.stopTimeout = d
	}
}

// Controller owns the single in-flight timer.
//
// Thread-safety: All methods are safe for concurrent use.
type Controller struct {
	store       Store
	clock       clock.Clock
	logger      *slog.Logger
	tokens      TokenGenerator
	onAutoStop  AutoStopHook
	stopTimeout time.Duration

	mu      sync.Mutex
	current *running // nil while Idle
	closed  bool

	watchers sync.WaitGroup
}

// running is the in-memory state of the active timer.
type running struct {
	token       string
	start       time.Time
	deadline    time.Time
	tags        []store.Tag
	description string
	cancel      context.CancelFunc // nil when no watchdog is armed
}

// New creates an Idle controller backed by s.
func New(s Store, opts ...Option) *Controller {
	c := &Controller{
		store:       s,
		clock:       clock.New(),
		logger:      slog.Default(),
		tokens:      UUIDv7Generator{},
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start transitions Idle -> Running.
//
// Returns an ALREADY_RUNNING *Error if a timer is active; the active timer is
// left untouched. Tag resolution happens before the timer exists, so a slow
// tag lookup never holds the controller lock.
func (c *Controller) Start(ctx context.Context, opts StartOptions) (Snapshot, error) {
	if opts.Duration < 0 {
		return Snapshot{}, newInvalidDurationError(opts.Duration)
	}

	c.mu.Lock()
	if cur := c.current; cur != nil {
		c.mu.Unlock()
		return Snapshot{}, newAlreadyRunningError(cur.token, cur.start)
	}
	c.mu.Unlock()

	tags := c.resolveTags(ctx, opts.Tags)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another Start may have won while tags were resolving.
	if cur := c.current; cur != nil {
		return Snapshot{}, newAlreadyRunningError(cur.token, cur.start)
	}
	if c.closed {
		return Snapshot{}, fmt.Errorf("start timer: controller closed")
	}

	now := c.clock.Now()
	r := &running{
		token:       c.tokens.Generate(),
		start:       now,
		tags:        tags,
		description: strings.TrimSpace(opts.Description),
	}
	if opts.Duration > 0 {
		r.deadline = now.Add(opts.Duration)
		wctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		c.watchers.Add(1)
		go c.watch(wctx, r.token, r.deadline)
	}
	c.current = r

	c.logger.Info("timer started",
		"token", r.token,
		"tags", tagNames(r.tags),
		"duration", opts.Duration,
	)
	return r.snapshot(now), nil
}

// Stop transitions Running -> Idle, persisting the slice, its tags and its
// description atomically.
//
// Returns a NOT_RUNNING *Error when Idle. If the store write fails the timer
// remains Running so the caller may retry.
func (c *Controller) Stop(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked(ctx, false)
}

// Status returns a snapshot of the running timer with Elapsed computed now.
// Returns a NOT_RUNNING *Error when Idle.
func (c *Controller) Status() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Snapshot{}, newNotRunningError()
	}
	return c.current.snapshot(c.clock.Now()), nil
}

// Running reports whether a timer is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// List builds a timeline from the store and applies f.
func (c *Controller) List(ctx context.Context, f timeline.Filter) (*timeline.Timeline, error) {
	tl, err := timeline.Build(ctx, c.store)
	if err != nil {
		return nil, err
	}
	return tl.Filter(f), nil
}

// Remove deletes a persisted slice. Tag links and the description go with it.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := c.store.RemoveSlice(ctx, id); err != nil {
		return err
	}
	c.logger.Info("slice removed", "slice_id", id)
	return nil
}

// UpdateTags replaces the tag set of a persisted slice.
// Names that fail normalization are logged and dropped.
func (c *Controller) UpdateTags(ctx context.Context, id int64, names []string) error {
	valid := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := store.NormalizeTagName(name); err != nil {
			c.logger.Warn("dropping tag", "slice_id", id, "tag", name, "error", err)
			continue
		}
		valid = append(valid, name)
	}
	if err := c.store.UpdateSliceTags(ctx, id, valid); err != nil {
		return err
	}
	c.logger.Info("slice tags updated", "slice_id", id, "tags", valid)
	return nil
}

// UpdateDescription replaces or clears the description of a persisted slice.
func (c *Controller) UpdateDescription(ctx context.Context, id int64, text string) error {
	if err := c.store.UpdateSliceDescription(ctx, id, text); err != nil {
		return err
	}
	c.logger.Info("slice description updated", "slice_id", id)
	return nil
}

// Retime changes the bounds of a persisted slice.
// A zero start or end keeps the stored value.
func (c *Controller) Retime(ctx context.Context, id int64, start, end time.Time) (store.Slice, error) {
	s, err := c.store.Slice(ctx, id)
	if err != nil {
		return store.Slice{}, err
	}
	if !start.IsZero() {
		s.Start = clock.Truncate(start)
	}
	if !end.IsZero() {
		s.End = clock.Truncate(end)
	}
	if err := c.store.UpdateSlice(ctx, s); err != nil {
		return store.Slice{}, err
	}
	c.logger.Info("slice retimed", "slice_id", id, "start", s.Start, "end", s.End)
	return s, nil
}

// Close cancels any armed watchdog and waits for it to exit.
//
// A timer still running is discarded, not persisted: the controller never
// writes an open slice. Callers that want to keep it should Stop first.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	if r := c.current; r != nil {
		if r.cancel != nil {
			r.cancel()
		}
		c.logger.Warn("discarding running timer on close",
			"token", r.token,
			"elapsed", c.clock.Now().Sub(r.start),
		)
		c.current = nil
	}
	c.mu.Unlock()

	c.watchers.Wait()
	return nil
}

// stopLocked persists the current timer. Caller must hold c.mu.
func (c *Controller) stopLocked(ctx context.Context, auto bool) (Snapshot, error) {
	r := c.current
	if r == nil {
		return Snapshot{}, newNotRunningError()
	}

	end := c.clock.Now()
	// Slices must have positive length at millisecond precision.
	if end.UnixMilli() <= r.start.UnixMilli() {
		end = time.UnixMilli(r.start.UnixMilli() + 1)
	}

	tagIDs := make([]int64, len(r.tags))
	for i, t := range r.tags {
		tagIDs[i] = t.ID
	}

	id, err := c.store.InsertSliceWithContext(ctx, store.SliceContext{
		Start:       r.start,
		End:         end,
		TagIDs:      tagIDs,
		Description: r.description,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("stop timer: %w", err)
	}

	if r.cancel != nil {
		r.cancel()
	}
	c.current = nil

	snap := r.snapshot(end)
	snap.SliceID = id
	snap.End = end
	snap.AutoStopped = auto

	c.logger.Info("timer stopped",
		"token", r.token,
		"slice_id", id,
		"elapsed", snap.Elapsed,
		"auto", auto,
	)
	return snap, nil
}

// resolveTags maps raw names to registry entries, dropping failures.
func (c *Controller) resolveTags(ctx context.Context, names []string) []store.Tag {
	tags := make([]store.Tag, 0, len(names))
	seen := make(map[int64]bool, len(names))
	for _, name := range names {
		tag, err := c.store.FindOrCreateTag(ctx, name)
		if err != nil {
			c.logger.Warn("dropping tag", "tag", name, "error", err)
			continue
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		tags = append(tags, tag)
	}
	return tags
}

func (r *running) snapshot(now time.Time) Snapshot {
	return Snapshot{
		Token:       r.token,
		Start:       r.start,
		Deadline:    r.deadline,
		Elapsed:     now.Sub(r.start),
		Tags:        tagNames(r.tags),
		Description: r.description,
	}
}

func tagNames(tags []store.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
