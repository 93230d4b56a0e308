package models

// DateLayout is the wire format for workout dates (date only, no time).
const DateLayout = "2006-01-02"

// Exercise is a single exercise entry within a workout.
// Weight is optional; nil means the exercise is unweighted.
type Exercise struct {
	Name   string   `json:"name"`
	Sets   int      `json:"sets"`
	Reps   int      `json:"reps"`
	Weight *float64 `json:"weight,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// Workout is a server-confirmed workout record. The client only ever holds
// read-only copies of these; edits go through a draft.
type Workout struct {
	ID        string     `json:"_id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}
