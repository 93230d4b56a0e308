// Package submit drives a workout draft through the submission state
// machine: Idle → Submitting → Success or Failed, with Success returning to
// Idle after a display delay. The Submitting state blocks repeated submits.
package submit

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/draft"
	"github.com/guissxs/treinocli/internal/session"
)

// State is the controller's submission state.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// LoginPath is where the navigator is sent when authentication is required.
const LoginPath = "/login"

// WorkoutsPath is where the edit flow navigates after a successful save.
const WorkoutsPath = "/treinos"

// Navigator redirects the user to another view. The CLI implementation
// prints the next command to run; a UI would change routes.
type Navigator interface {
	GoTo(path string)
}

// API is the slice of the REST client the controller needs.
type API interface {
	CreateWorkout(ctx context.Context, token string, p api.Payload) error
	UpdateWorkout(ctx context.Context, token, id string, p api.Payload) error
}

// Result reports what a submission attempt did.
type Result struct {
	Draft draft.Draft // reset (create) or changes-cleared (edit) on success
	// Message is the user-facing outcome: a success banner, a validation
	// message, or a mapped error. Empty only on the redirect-to-login paths.
	Message string
	OK      bool
}

// Controller owns the submission state for one draft flow.
type Controller struct {
	guard  *session.Guard
	client API
	nav    Navigator
	log    *slog.Logger

	// successDelay is how long the Succeeded state is displayed before the
	// controller returns to Idle (create) or navigates away (edit).
	successDelay time.Duration
	now          func() time.Time

	mu    sync.Mutex
	state State
}

// NewController creates a Controller. successDelay mirrors the success
// banner display time of the web client.
func NewController(guard *session.Guard, client API, nav Navigator, successDelay time.Duration, log *slog.Logger) *Controller {
	return &Controller{
		guard:        guard,
		client:       client,
		nav:          nav,
		log:          log,
		successDelay: successDelay,
		now:          time.Now,
	}
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// begin moves Failed back to Idle (a new attempt clears the old failure)
// and then tries to enter Submitting. It reports false when a submission is
// already in flight.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return false
	}
	// A new attempt clears a previous failure or success display.
	c.state = Submitting
	return true
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// afterSuccess shows Succeeded for the display delay, then runs done if the
// controller is still in that state. A submission started meanwhile (or a
// discarded controller) wins; the stale timer must not clobber it.
func (c *Controller) afterSuccess(done func()) {
	time.AfterFunc(c.successDelay, func() {
		c.mu.Lock()
		live := c.state == Succeeded
		if live {
			c.state = Idle
		}
		c.mu.Unlock()
		if live && done != nil {
			done()
		}
	})
}

// SubmitCreate validates and submits a creation draft. On success the
// returned draft is a fresh empty one dated today.
func (c *Controller) SubmitCreate(ctx context.Context, d draft.Draft) Result {
	return c.submit(ctx, d, false)
}

// SubmitEdit validates and submits an edit draft against its workout id.
// Submission is refused while the draft has no unsaved changes. On success
// the returned draft keeps its content with the unsaved-changes flag
// cleared, and the navigator is sent to the workout list after the display
// delay.
func (c *Controller) SubmitEdit(ctx context.Context, d draft.Draft) Result {
	if !d.Changed {
		return Result{Draft: d, Message: MsgNoChanges}
	}
	return c.submit(ctx, d, true)
}

func (c *Controller) submit(ctx context.Context, d draft.Draft, edit bool) Result {
	if !c.begin() {
		return Result{Draft: d, Message: MsgAlreadySubmitting}
	}

	// Session first: an expired token means a redirect, not a form error.
	sess, err := c.guard.Check()
	if err != nil {
		c.setState(Idle)
		if err == session.ErrUnauthenticated {
			c.nav.GoTo(LoginPath)
			return Result{Draft: d}
		}
		c.log.Error("session check failed", "error", err)
		return Result{Draft: d, Message: MsgUnexpected}
	}

	if errs := d.ValidateForSubmission(); len(errs) > 0 {
		c.setState(Idle)
		return Result{Draft: d, Message: strings.Join(errs, "\n")}
	}

	payload := api.Payload{Title: d.Title, Date: d.Date, Exercises: d.Exercises}
	if edit {
		err = c.client.UpdateWorkout(ctx, sess.Token, d.WorkoutID, payload)
	} else {
		err = c.client.CreateWorkout(ctx, sess.Token, payload)
	}

	if err != nil {
		// A rejected token overrides every other failure: evict, redirect,
		// and go straight back to Idle with no Failed display.
		if _, ok := err.(*api.AuthError); ok {
			if evictErr := c.guard.Evict(); evictErr != nil {
				c.log.Error("token eviction failed", "error", evictErr)
			}
			c.setState(Idle)
			c.nav.GoTo(LoginPath)
			return Result{Draft: d}
		}

		c.setState(Failed)
		fallback := MsgCreateFailed
		if edit {
			fallback = MsgUpdateFailed
		}
		c.log.Error("workout submission failed", "edit", edit, "error", err)
		return Result{Draft: d, Message: UserMessage(err, fallback)}
	}

	c.setState(Succeeded)
	if edit {
		c.afterSuccess(func() { c.nav.GoTo(WorkoutsPath) })
		return Result{Draft: d.ClearChanged(), Message: MsgUpdated, OK: true}
	}
	c.afterSuccess(nil)
	return Result{Draft: draft.New(c.now()), Message: MsgCreated, OK: true}
}
