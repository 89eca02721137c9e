// Package retry drives a translation attempt through a user-visible
// progress scope and lets the user decide whether a failed attempt is
// tried again.
package retry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// State is a step of the retry state machine.
type State int

const (
	StateRunning State = iota
	StateAwaitingDecision
	StateSuccess
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateSuccess:
		return "success"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Prompter is the user-facing side of the controller.
type Prompter interface {
	// Progress runs fn inside a cancellable "in progress" scope. The user
	// may cancel, in which case the ctx passed to fn is canceled; Progress
	// returns whatever fn returned.
	Progress(ctx context.Context, title string, fn func(ctx context.Context) string) string

	// ConfirmRetry asks whether to try again. Dismissing the question
	// counts as false.
	ConfirmRetry(ctx context.Context, message string) bool
}

var outcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vartrans_retry_outcomes_total",
		Help: "Retry loop transitions by outcome (success, retry, abort)",
	},
	[]string{"outcome"},
)

// Controller runs attempts until one succeeds or the user gives up. There is
// no automatic backoff and no attempt limit.
type Controller struct {
	prompter Prompter
	logger   *logrus.Logger

	// OnState, when set, observes every state transition.
	OnState func(State)
}

// New creates a Controller.
func New(prompter Prompter, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{prompter: prompter, logger: logger}
}

// Attempt runs fn until it returns a non-empty string, which is returned.
// After each empty result the user is asked whether to retry; declining
// returns "". A canceled ctx also ends the loop with "".
func (c *Controller) Attempt(ctx context.Context, title string, fn func(ctx context.Context) string) string {
	for attempt := 1; ; attempt++ {
		c.enter(StateRunning)
		result := c.prompter.Progress(ctx, title, fn)
		if result != "" {
			c.enter(StateSuccess)
			outcomesTotal.WithLabelValues("success").Inc()
			return result
		}
		if ctx.Err() != nil {
			c.enter(StateAborted)
			outcomesTotal.WithLabelValues("abort").Inc()
			return ""
		}

		c.enter(StateAwaitingDecision)
		c.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"title":   title,
		}).Debug("Attempt failed, asking user")

		if !c.prompter.ConfirmRetry(ctx, "translation failed, retry?") {
			c.enter(StateAborted)
			outcomesTotal.WithLabelValues("abort").Inc()
			return ""
		}
		outcomesTotal.WithLabelValues("retry").Inc()
	}
}

func (c *Controller) enter(s State) {
	if c.OnState != nil {
		c.OnState(s)
	}
}
