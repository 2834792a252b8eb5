package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed save can block the step.
const DefaultLockTTL = 30 * time.Second

// Editor edits a copy of one step.
// Safe for concurrent use; a second Save while one is in flight fails with domain.ErrSaveInProgress.
type Editor struct {
	mu       sync.Mutex
	steps    domain.StepMap
	original domain.Step
	step     domain.Step
	closed   bool
	err      error
	saving   atomic.Bool

	locker    ports.Locker
	lockTTL   time.Duration
	terminals domain.TerminalSet
	logger    *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithLocker guards Save with a lock keyed by step id, so separate processes cannot save
// the same step concurrently.
func WithLocker(l ports.Locker) Option {
	return func(e *Editor) {
		e.locker = l
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Editor) {
		e.lockTTL = ttl
	}
}

// WithTargetCheck rejects, at Save, options whose target is neither a step nor one of terminals.
func WithTargetCheck(terminals domain.TerminalSet) Option {
	return func(e *Editor) {
		e.terminals = terminals
	}
}

// WithLogger configures a logger for the Editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// Open starts editing step id of steps. The map is never modified.
func Open(steps domain.StepMap, id domain.StepID, opts ...Option) (*Editor, error) {
	step, err := steps.Lookup(id)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		steps:    steps,
		original: step.Clone(),
		step:     step.Clone(),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StepID returns the id of the step being edited.
func (e *Editor) StepID() domain.StepID {
	return e.original.ID
}

// Step returns a copy of the working step.
func (e *Editor) Step() domain.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step.Clone()
}

// Err returns the error of the last failed Save, or nil.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Closed reports whether the editor was closed by a successful Save or by Cancel.
func (e *Editor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Saving reports whether a Save is in flight.
func (e *Editor) Saving() bool {
	return e.saving.Load()
}

// Dirty reports whether the working step differs from the step as opened.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step.Title != e.original.Title ||
		e.step.Description != e.original.Description ||
		!slices.Equal(e.step.Options, e.original.Options)
}

// Cancel discards local changes and closes the editor.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step = e.original.Clone()
	e.closed = true
	e.err = nil
}

// AddOption appends an option with the next numeric id.
// When the step ends with the "0" (return) option, the new option goes right before it.
func (e *Editor) AddOption(title string) (domain.Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.Option{}, domain.ErrEditorClosed
	}
	opt := domain.Option{ID: e.step.NextOptionID(), Title: title}
	e.insert(opt)
	return opt, nil
}

// AddOptionWithID adds an option with a caller-chosen id, accepted as typed.
func (e *Editor) AddOptionWithID(id, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrEmptyOptionID
	}
	if _, exists := e.step.Option(id); exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOption, id)
	}
	e.insert(domain.Option{ID: id, Title: title})
	return nil
}

func (e *Editor) insert(opt domain.Option) {
	n := len(e.step.Options)
	if n > 0 && e.step.Options[n-1].ID == domain.BackOptionID && opt.ID != domain.BackOptionID {
		e.step.Options = slices.Insert(e.step.Options, n-1, opt)
		return
	}
	e.step.Options = append(e.step.Options, opt)
}

// SetOption changes the title of option id.
func (e *Editor) SetOption(id, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrOptionNotFound, id)
	}
	e.step.Options[i].Title = title
	return nil
}

// SetTarget points option id at another step.
func (e *Editor) SetTarget(id string, target domain.StepID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrOptionNotFound, id)
	}
	e.step.Options[i].Target = target
	return nil
}

// RemoveOption deletes option id from the working copy.
func (e *Editor) RemoveOption(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrOptionNotFound, id)
	}
	e.step.Options = slices.Delete(e.step.Options, i, i+1)
	return nil
}

// SetOptions replaces the whole option list, in the given order.
// Ids must be non-empty and unique.
func (e *Editor) SetOptions(opts []domain.Option) error {
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if strings.TrimSpace(o.ID) == "" {
			return domain.ErrEmptyOptionID
		}
		if seen[o.ID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOption, o.ID)
		}
		seen[o.ID] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	e.step.Options = slices.Clone(opts)
	return nil
}

// SetTitle changes the step title.
func (e *Editor) SetTitle(title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	e.step.Title = title
	return nil
}

// SetDescription changes the step description.
func (e *Editor) SetDescription(description string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditorClosed
	}
	e.step.Description = description
	return nil
}

func (e *Editor) index(id string) int {
	return slices.IndexFunc(e.step.Options, func(o domain.Option) bool { return o.ID == id })
}

// Save sends the working step in one UpdateMenu call.
//
// On success it returns the step map patched with the saved step and closes the editor.
// On failure the editor stays open with Err set, and the map passed to Open is unchanged.
func (e *Editor) Save(ctx context.Context, svc ports.MenuService) (domain.StepMap, error) {
	if !e.saving.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaveInProgress, e.StepID())
	}
	defer e.saving.Store(false)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, domain.ErrEditorClosed
	}
	step := e.step.Clone()
	e.mu.Unlock()

	if err := e.checkTargets(step); err != nil {
		return nil, e.fail(err)
	}

	if e.locker != nil {
		unlock, err := e.locker.TryLock(ctx, "step:"+string(step.ID), e.lockTTL)
		if err != nil {
			return nil, e.fail(err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.Warn("Failed to release save lock (will expire via TTL)",
					"step", step.ID,
					"err", err,
				)
			}
		}()
	}

	if err := svc.UpdateMenu(ctx, step); err != nil {
		return nil, e.fail(fmt.Errorf("failed to save step %s: %w", step.ID, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.err = nil
	e.logger.Debug("Step saved", "step", step.ID, "options", len(step.Options))
	return e.steps.With(step), nil
}

func (e *Editor) fail(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
	e.logger.Warn("Step save failed", "step", e.original.ID, "err", err)
	return err
}

func (e *Editor) checkTargets(step domain.Step) error {
	if e.terminals == nil {
		return nil
	}
	var refs []domain.DanglingRef
	for _, o := range step.Options {
		target := o.Target
		if target == "" {
			target = domain.StepID(o.ID)
		}
		if _, ok := e.steps[target]; !ok && !e.terminals.Has(target) {
			refs = append(refs, domain.DanglingRef{Step: step.ID, Option: o.ID, Target: target})
		}
	}
	return domain.ValidateRefs(refs)
}
