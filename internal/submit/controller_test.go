package submit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/apitest"
	"github.com/guissxs/treinocli/internal/draft"
	"github.com/guissxs/treinocli/internal/models"
	"github.com/guissxs/treinocli/internal/session"
)

type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) SetToken(t string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = t
	return nil
}

func (s *memStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNav) GoTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *fakeNav) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires a controller against the fake API server with a logged-in
// session.
type fixture struct {
	srv   *apitest.Server
	store *memStore
	guard *session.Guard
	nav   *fakeNav
	ctrl  *Controller
}

func newFixture(t *testing.T, successDelay time.Duration) *fixture {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	store := &memStore{token: srv.IssueToken("user-1", time.Hour)}
	guard := session.NewGuard(store)
	nav := &fakeNav{}
	client := api.NewClient(srv.URL, 5*time.Second)
	return &fixture{
		srv:   srv,
		store: store,
		guard: guard,
		nav:   nav,
		ctrl:  NewController(guard, client, nav, successDelay, discardLog()),
	}
}

func validDraft(t *testing.T) draft.Draft {
	t.Helper()
	d := draft.New(time.Now())
	d = d.UpdateTitle("Treino de Peito")
	var err error
	d, err = d.AddExercise(models.Exercise{Name: "Supino Reto", Sets: 3, Reps: 10})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// waitForState polls until the controller reaches the wanted state or the
// deadline expires.
func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", c.State(), want)
}

// TestSubmitCreateSuccess verifies the full happy path: the workout lands
// on the server, the draft resets, and the controller returns to Idle after
// the success display delay.
func TestSubmitCreateSuccess(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)

	res := f.ctrl.SubmitCreate(context.Background(), validDraft(t))
	if !res.OK {
		t.Fatalf("submission failed: %q", res.Message)
	}
	if res.Message != MsgCreated {
		t.Errorf("message = %q, want %q", res.Message, MsgCreated)
	}
	if f.srv.WorkoutCount() != 1 {
		t.Errorf("server has %d workouts, want 1", f.srv.WorkoutCount())
	}
	if res.Draft.Title != "" || len(res.Draft.Exercises) != 0 || res.Draft.Changed {
		t.Error("draft was not reset after successful creation")
	}

	waitForState(t, f.ctrl, Idle)
}

// TestSubmitInvalidDraftStaysIdle verifies validation failures never leave
// Idle and surface the accumulated messages.
func TestSubmitInvalidDraftStaysIdle(t *testing.T) {
	f := newFixture(t, time.Minute)

	d := draft.New(time.Now()) // no title, no exercises
	res := f.ctrl.SubmitCreate(context.Background(), d)
	if res.OK {
		t.Fatal("expected failure")
	}
	if f.ctrl.State() != Idle {
		t.Errorf("state = %v, want Idle", f.ctrl.State())
	}
	if res.Message != draft.MsgTitleRequired+"\n"+draft.MsgNoExercises {
		t.Errorf("message = %q, want accumulated validation errors", res.Message)
	}
	if f.srv.WorkoutCount() != 0 {
		t.Error("invalid draft reached the server")
	}
}

// TestSubmitWithoutSession verifies a missing token aborts the attempt and
// redirects to login without any message.
func TestSubmitWithoutSession(t *testing.T) {
	f := newFixture(t, time.Minute)
	_ = f.store.ClearToken()

	res := f.ctrl.SubmitCreate(context.Background(), validDraft(t))
	if res.OK || res.Message != "" {
		t.Errorf("result = %+v, want silent redirect", res)
	}
	if f.nav.last() != LoginPath {
		t.Errorf("navigated to %q, want %q", f.nav.last(), LoginPath)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("state = %v, want Idle", f.ctrl.State())
	}
}

// TestSubmitRejectedToken verifies a 401 from the server evicts the stored
// token and redirects to login, with no Failed display.
func TestSubmitRejectedToken(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.srv.RevokeToken(f.store.token)

	res := f.ctrl.SubmitCreate(context.Background(), validDraft(t))
	if res.OK || res.Message != "" {
		t.Errorf("result = %+v, want silent redirect", res)
	}
	if tok, _ := f.store.Token(); tok != "" {
		t.Error("token not evicted after 401")
	}
	if f.nav.last() != LoginPath {
		t.Errorf("navigated to %q, want %q", f.nav.last(), LoginPath)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("state = %v, want Idle (no Failed display)", f.ctrl.State())
	}
}

// TestSubmitServerMessage verifies a failed submission enters Failed and
// passes the server's message through verbatim.
func TestSubmitServerMessage(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.srv.FailNext(http.StatusUnprocessableEntity, "Limite de treinos atingido")

	res := f.ctrl.SubmitCreate(context.Background(), validDraft(t))
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Message != "Limite de treinos atingido" {
		t.Errorf("message = %q, want verbatim server text", res.Message)
	}
	if f.ctrl.State() != Failed {
		t.Errorf("state = %v, want Failed", f.ctrl.State())
	}

	// The next attempt clears the failure and succeeds.
	res = f.ctrl.SubmitCreate(context.Background(), validDraft(t))
	if !res.OK {
		t.Fatalf("retry failed: %q", res.Message)
	}
}

// TestSubmitEditClearsChanges verifies the edit flow keeps the draft
// content, clears the unsaved-changes flag, and navigates to the workout
// list after the display delay.
func TestSubmitEditClearsChanges(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	seeded := f.srv.SeedWorkout(models.Workout{UserID: "user-1", Title: "Lower Body", Date: "2026-01-01"})

	d := draft.FromWorkout(seeded)
	d = d.UpdateTitle("Lower Body B")
	d, err := d.AddExercise(models.Exercise{Name: "Agachamento", Sets: 5, Reps: 5})
	if err != nil {
		t.Fatal(err)
	}

	res := f.ctrl.SubmitEdit(context.Background(), d)
	if !res.OK {
		t.Fatalf("submission failed: %q", res.Message)
	}
	if res.Draft.Changed {
		t.Error("unsaved-changes flag still set after successful save")
	}
	if res.Draft.Title != "Lower Body B" {
		t.Error("edit draft content was reset; it should be kept")
	}

	stored, _ := f.srv.Workout(seeded.ID)
	if stored.Title != "Lower Body B" {
		t.Errorf("server title = %q, want Lower Body B", stored.Title)
	}

	waitForState(t, f.ctrl, Idle)
	if f.nav.last() != WorkoutsPath {
		t.Errorf("navigated to %q, want %q after success delay", f.nav.last(), WorkoutsPath)
	}
}

// TestSubmitEditWithoutChanges verifies saving is refused while the edit
// draft has no unsaved changes.
func TestSubmitEditWithoutChanges(t *testing.T) {
	f := newFixture(t, time.Minute)
	seeded := f.srv.SeedWorkout(models.Workout{
		UserID: "user-1", Title: "Lower Body", Date: "2026-01-01",
		Exercises: []models.Exercise{{Name: "Agachamento", Sets: 5, Reps: 5}},
	})

	res := f.ctrl.SubmitEdit(context.Background(), draft.FromWorkout(seeded))
	if res.OK {
		t.Fatal("expected refusal")
	}
	if res.Message != MsgNoChanges {
		t.Errorf("message = %q, want %q", res.Message, MsgNoChanges)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("state = %v, want Idle", f.ctrl.State())
	}
}

// TestSubmitEditNotFound verifies a stale workout id surfaces the distinct
// not-found message.
func TestSubmitEditNotFound(t *testing.T) {
	f := newFixture(t, time.Minute)

	d := draft.FromWorkout(models.Workout{ID: "gone", Title: "X", Date: "2026-01-01",
		Exercises: []models.Exercise{{Name: "Remada", Sets: 3, Reps: 8}}})
	d = d.UpdateTitle("X+")

	res := f.ctrl.SubmitEdit(context.Background(), d)
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Message != MsgNotFound {
		t.Errorf("message = %q, want %q", res.Message, MsgNotFound)
	}
}

// blockingAPI holds submissions until released, to observe the Submitting
// state from a second goroutine.
type blockingAPI struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) CreateWorkout(ctx context.Context, token string, p api.Payload) error {
	close(b.entered)
	<-b.release
	return nil
}

func (b *blockingAPI) UpdateWorkout(ctx context.Context, token, id string, p api.Payload) error {
	return nil
}

// TestDoubleSubmitGuard verifies a second submit while one is in flight is
// refused immediately.
func TestDoubleSubmitGuard(t *testing.T) {
	store := &memStore{}
	srv := apitest.New()
	t.Cleanup(srv.Close)
	_ = store.SetToken(srv.IssueToken("user-1", time.Hour))

	blocked := &blockingAPI{entered: make(chan struct{}), release: make(chan struct{})}
	ctrl := NewController(session.NewGuard(store), blocked, &fakeNav{}, time.Minute, discardLog())

	done := make(chan Result, 1)
	go func() { done <- ctrl.SubmitCreate(context.Background(), validDraft(t)) }()
	<-blocked.entered

	res := ctrl.SubmitCreate(context.Background(), validDraft(t))
	if res.Message != MsgAlreadySubmitting {
		t.Errorf("message = %q, want %q", res.Message, MsgAlreadySubmitting)
	}

	close(blocked.release)
	first := <-done
	if !first.OK {
		t.Fatalf("first submission failed: %q", first.Message)
	}
}

// TestUserMessageMapping covers the error-to-message table.
func TestUserMessageMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"conflict", &api.ConflictError{}, MsgEmailTaken},
		{"not found", &api.NotFoundError{}, MsgNotFound},
		{"server message", &api.ServerMessageError{Status: 422, Message: "texto do servidor"}, "texto do servidor"},
		{"transport", &api.TransportError{Err: context.DeadlineExceeded}, MsgConnection},
		{"unexpected shape", &api.UnexpectedError{Status: 500}, MsgServer},
		{"unknown", context.Canceled, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "fallback"); got != tt.want {
				t.Errorf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
