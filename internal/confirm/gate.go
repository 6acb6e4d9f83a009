// Package confirm puts a destructive action behind an explicit yes/no decision.
package confirm

import (
	"sync"
)

// Decision records how an open prompt was closed.
type Decision string

const (
	// Undecided means the prompt is still open.
	Undecided Decision = ""
	// Confirmed means the user approved the action.
	Confirmed Decision = "confirm"
	// Cancelled means the user declined, explicitly or by dismissing the dialog.
	Cancelled Decision = "cancel"
)

// ParseDecision maps a submitted form value to a Decision. Anything other
// than "confirm" is a cancellation.
func ParseDecision(s string) Decision {
	if Decision(s) == Confirmed {
		return Confirmed
	}
	return Cancelled
}

// Dialog is the view model of the confirmation modal.
type Dialog struct {
	Description  string
	ConfirmLabel string
	CancelLabel  string
	Open         bool
}

// Gate holds a description and the two outcomes of a confirmation.
type Gate struct {
	description string
	onConfirm   func()
	onCancel    func()
	labels      [2]string
}

// Option customises a Gate.
type Option func(*Gate)

// WithLabels overrides the button labels.
func WithLabels(confirm, cancel string) Option {
	return func(g *Gate) {
		g.labels = [2]string{confirm, cancel}
	}
}

// Request builds a Gate. onCancel may be nil.
func Request(description string, onConfirm, onCancel func(), opts ...Option) *Gate {
	g := &Gate{
		description: description,
		onConfirm:   onConfirm,
		onCancel:    onCancel,
		labels:      [2]string{"Confirm", "Cancel"},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open shows the modal and returns the prompt for this open cycle.
func (g *Gate) Open() *Prompt {
	return &Prompt{gate: g}
}

// Prompt is one open cycle of a Gate. The first decision wins; later calls are no-ops.
type Prompt struct {
	gate     *Gate
	once     sync.Once
	mu       sync.Mutex
	decision Decision
}

// Dialog returns the modal view model.
func (p *Prompt) Dialog() Dialog {
	return Dialog{
		Description:  p.gate.description,
		ConfirmLabel: p.gate.labels[0],
		CancelLabel:  p.gate.labels[1],
		Open:         p.Decision() == Undecided,
	}
}

// Decision returns the decision taken, or Undecided.
func (p *Prompt) Decision() Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.decision
}

// Confirm runs onConfirm then closes. It reports whether this call decided the prompt.
func (p *Prompt) Confirm() bool {
	return p.decide(Confirmed)
}

// Cancel runs onCancel, if any, then closes. It reports whether this call decided the prompt.
func (p *Prompt) Cancel() bool {
	return p.decide(Cancelled)
}

// Dismiss closes the prompt from the backdrop or escape key; it counts as Cancel.
func (p *Prompt) Dismiss() bool {
	return p.decide(Cancelled)
}

// Resolve applies d: Confirmed confirms, anything else cancels.
func (p *Prompt) Resolve(d Decision) bool {
	if d == Confirmed {
		return p.Confirm()
	}
	return p.Cancel()
}

func (p *Prompt) decide(d Decision) bool {
	decided := false
	p.once.Do(func() {
		decided = true
		switch d {
		case Confirmed:
			if p.gate.onConfirm != nil {
				p.gate.onConfirm()
			}
		default:
			if p.gate.onCancel != nil {
				p.gate.onCancel()
			}
		}
		p.mu.Lock()
		p.decision = d
		p.mu.Unlock()
	})
	return decided
}
