package models

import (
	"sort"
	"strings"
)

// Filter returns the workouts whose date contains dateSubstr and whose title
// contains titleSubstr (case-insensitive). An empty filter string matches
// everything. The result is a new slice sorted by date descending; workouts
// with equal dates keep their original relative order. The input slice is
// not modified.
func Filter(workouts []Workout, dateSubstr, titleSubstr string) []Workout {
	titleSubstr = strings.ToLower(titleSubstr)

	out := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if dateSubstr != "" && !strings.Contains(w.Date, dateSubstr) {
			continue
		}
		if titleSubstr != "" && !strings.Contains(strings.ToLower(w.Title), titleSubstr) {
			continue
		}
		out = append(out, w)
	}

	// ISO date strings sort lexicographically, so string comparison gives
	// chronological order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}
