package mutation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// Phase is the lifecycle position of a Controller.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Terminal reports whether p is succeeded or failed.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// ErrPending is returned by Submit while an earlier submission is in flight.
var ErrPending = errors.New("mutation: a submission is already pending")

// DialogState is the result dialog as seen by the view. Only the Controller writes it.
type DialogState struct {
	Open  bool
	Phase Phase
}

// Action performs the wrapped write. A returned error or a panic counts as a failure.
type Action[T any] func(ctx context.Context) (Result[T], error)

// Call adapts a plain (T, error) function into an Action.
func Call[T any](fn func(ctx context.Context) (T, error)) Action[T] {
	return func(ctx context.Context) (Result[T], error) {
		data, err := fn(ctx)
		if err != nil {
			return Result[T]{}, err
		}
		return Succeeded(data), nil
	}
}

// Options configures a Controller.
type Options struct {
	// PreventEscape ignores Dismiss while a submission is pending.
	PreventEscape bool
	// OnSuccessDismiss runs when the user dismisses the dialog after a success.
	OnSuccessDismiss func()
	// OnTransition observes every phase change.
	OnTransition func(from, to Phase)
}

// Controller runs one mutation at a time and owns its DialogState.
type Controller[T any] struct {
	mu     sync.Mutex
	opts   Options
	phase  Phase
	open   bool
	result Result[T]
}

// NewController returns an idle controller.
func NewController[T any](opts Options) *Controller[T] {
	return &Controller[T]{opts: opts, phase: PhaseIdle}
}

// State returns a snapshot of the dialog.
func (c *Controller[T]) State() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DialogState{Open: c.open, Phase: c.phase}
}

// Result returns the terminal result, if the controller is in a terminal phase.
func (c *Controller[T]) Result() (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.phase.Terminal()
}

// Submit enters pending, opens the dialog and runs action. It blocks until the
// action resolves and returns its Result. Exactly one terminal phase is reached
// per accepted submission. Submitting while pending returns ErrPending.
func (c *Controller[T]) Submit(ctx context.Context, action Action[T]) (Result[T], error) {
	c.mu.Lock()
	if c.phase == PhasePending {
		c.mu.Unlock()
		return Result[T]{}, ErrPending
	}
	from := c.phase
	c.phase = PhasePending
	c.open = true
	c.result = Result[T]{}
	c.mu.Unlock()
	c.notify(from, PhasePending)

	res := run(ctx, action)

	to := PhaseFailed
	if res.OK() {
		to = PhaseSucceeded
	}
	c.mu.Lock()
	c.phase = to
	c.result = res
	c.mu.Unlock()
	c.notify(PhasePending, to)
	return res, nil
}

// Dismiss closes the dialog. While pending it is ignored when PreventEscape is
// set. From a terminal phase it returns to idle; the success follow-up runs
// only when the phase was succeeded. It reports whether the follow-up ran.
func (c *Controller[T]) Dismiss() bool {
	c.mu.Lock()
	switch {
	case c.phase == PhasePending:
		if !c.opts.PreventEscape {
			c.open = false
		}
		c.mu.Unlock()
		return false
	case !c.phase.Terminal():
		c.open = false
		c.mu.Unlock()
		return false
	}
	from := c.phase
	c.phase = PhaseIdle
	c.open = false
	c.mu.Unlock()
	c.notify(from, PhaseIdle)

	if from != PhaseSucceeded {
		return false
	}
	if c.opts.OnSuccessDismiss != nil {
		c.opts.OnSuccessDismiss()
	}
	return true
}

// CanDismiss reports whether Dismiss would close the dialog now.
func (c *Controller[T]) CanDismiss() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != PhasePending || !c.opts.PreventEscape
}

func (c *Controller[T]) notify(from, to Phase) {
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(from, to)
	}
}

func run[T any](ctx context.Context, action Action[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = FromError[T](apperrors.Wrap(fmt.Errorf("panic: %v", r), apperrors.ErrCodeInternal, ""))
		}
	}()
	if action == nil {
		return Failed[T]("", http.StatusInternalServerError)
	}
	out, err := action(ctx)
	if err != nil {
		return FromError[T](err)
	}
	return out
}
