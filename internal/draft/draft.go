// Package draft holds an in-progress workout while the user builds it up.
// Every operation is copy-on-write: it returns a new Draft and never mutates
// the one it was given, so earlier values stay inspectable for cancel and
// discard flows.
package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guissxs/treinocli/internal/models"
)

// Validation messages, in Portuguese to match the product UI.
const (
	MsgExerciseNameRequired = "O nome do exercício é obrigatório"
	MsgSetsRepsPositive     = "Séries e repetições devem ser maiores que zero"
	MsgWeightNegative       = "O peso não pode ser negativo"
	MsgTitleRequired        = "O título é obrigatório"
	MsgNoExercises          = "Adicione pelo menos um exercício"
	MsgDateInFuture         = "A data não pode ser no futuro"
	MsgDateInvalid          = "Data inválida"
)

// Default values for a fresh exercise entry form.
const (
	DefaultSets = 3
	DefaultReps = 10
)

// ValidationError is a user-facing draft error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Exercise entry errors, checked in this order by AddExercise.
var (
	ErrEmptyName           = &ValidationError{Message: MsgExerciseNameRequired}
	ErrNonPositiveSetsReps = &ValidationError{Message: MsgSetsRepsPositive}
	ErrNegativeWeight      = &ValidationError{Message: MsgWeightNegative}
)

// Draft is a workout under construction. WorkoutID is set only in the edit
// flow, where the draft shadows an existing server record. Changed is true
// from the first mutation until a successful submission or discard.
type Draft struct {
	ID        string            `json:"id"`
	WorkoutID string            `json:"workoutId,omitempty"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Exercises []models.Exercise `json:"exercises"`
	Changed   bool              `json:"changed"`
}

// New creates an empty creation draft dated today.
func New(now time.Time) Draft {
	return Draft{
		ID:   uuid.NewString(),
		Date: now.Format(models.DateLayout),
	}
}

// FromWorkout creates an edit draft shadowing a server workout. Changed
// starts false: saving is pointless until something differs.
func FromWorkout(w models.Workout) Draft {
	d := Draft{
		ID:        uuid.NewString(),
		WorkoutID: w.ID,
		Title:     w.Title,
		Date:      normalizeDate(w.Date),
		Exercises: cloneExercises(w.Exercises),
	}
	return d
}

// normalizeDate reduces a server date (possibly a full timestamp) to the
// date-only wire format. Unparseable input is kept as-is.
func normalizeDate(s string) string {
	for _, layout := range []string{time.RFC3339, models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return s
}

func cloneExercises(in []models.Exercise) []models.Exercise {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Exercise, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Weight != nil {
			w := *out[i].Weight
			out[i].Weight = &w
		}
	}
	return out
}

// clone returns a deep copy of the draft.
func (d Draft) clone() Draft {
	d.Exercises = cloneExercises(d.Exercises)
	return d
}

// AddExercise validates the candidate and returns a new draft with it
// appended. Checks run in order (empty name, then non-positive sets/reps,
// then negative weight) and stop at the first failure.
func (d Draft) AddExercise(e models.Exercise) (Draft, error) {
	if strings.TrimSpace(e.Name) == "" {
		return d, ErrEmptyName
	}
	if e.Sets <= 0 || e.Reps <= 0 {
		return d, ErrNonPositiveSetsReps
	}
	if e.Weight != nil && *e.Weight < 0 {
		return d, ErrNegativeWeight
	}

	next := d.clone()
	next.Exercises = append(next.Exercises, e)
	next.Changed = true
	return next, nil
}

// RemoveExercise returns a new draft without the exercise at index. The
// index must come from a current enumeration of the draft's exercises;
// passing an out-of-range index is a caller bug and panics.
func (d Draft) RemoveExercise(index int) Draft {
	next := d.clone()
	next.Exercises = append(next.Exercises[:index], next.Exercises[index+1:]...)
	next.Changed = true
	return next
}

// UpdateTitle returns a new draft with the title replaced.
func (d Draft) UpdateTitle(title string) Draft {
	next := d.clone()
	next.Title = title
	next.Changed = true
	return next
}

// UpdateDate returns a new draft with the date replaced. Dates after today
// are rejected and leave the draft unchanged.
func (d Draft) UpdateDate(date string, now time.Time) (Draft, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return d, &ValidationError{Message: MsgDateInvalid}
	}
	if t.After(now) {
		return d, &ValidationError{Message: MsgDateInFuture}
	}

	next := d.clone()
	next.Date = date
	next.Changed = true
	return next, nil
}

// ClearChanged returns a copy with the unsaved-changes flag reset. Called
// after a successful submission.
func (d Draft) ClearChanged() Draft {
	next := d.clone()
	next.Changed = false
	return next
}

// ValidateForSubmission collects every violation in the draft, unlike the
// fail-fast account validation. An empty slice means the draft may be sent.
// Per-exercise messages name the exercise by its 1-based position.
func (d Draft) ValidateForSubmission() []string {
	var errs []string

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, MsgTitleRequired)
	}
	if len(d.Exercises) == 0 {
		errs = append(errs, MsgNoExercises)
	}
	for i, e := range d.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Sprintf("Exercício %d: Nome é obrigatório", i+1))
		}
		if e.Sets <= 0 {
			errs = append(errs, fmt.Sprintf("Exercício %d: Número de séries inválido", i+1))
		}
		if e.Reps <= 0 {
			errs = append(errs, fmt.Sprintf("Exercício %d: Número de repetições inválido", i+1))
		}
		if e.Weight != nil && *e.Weight < 0 {
			errs = append(errs, fmt.Sprintf("Exercício %d: Peso inválido", i+1))
		}
	}
	return errs
}
