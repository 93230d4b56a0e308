package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/draft"
	"github.com/guissxs/treinocli/internal/models"
	"github.com/guissxs/treinocli/internal/session"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the logged-in user's workouts, newest first. Optional substring filters on date and title."),
	mcp.WithString("date", mcp.Description("Date filter, substring match against YYYY-MM-DD (e.g. '2026-03' for a month)")),
	mcp.WithString("title", mcp.Description("Title filter, case-insensitive substring match")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Fetch one workout with its full exercise list."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolCreateWorkout = mcp.NewTool("create_workout",
	mcp.WithDescription("Create a workout. Exercises is a JSON array of {name, sets, reps, weight?, notes?}; sets and reps must be positive, weight (kg) is optional."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Workout title")),
	mcp.WithString("date", mcp.Description("Workout date (YYYY-MM-DD, not in the future). Defaults to today.")),
	mcp.WithString("exercises", mcp.Required(), mcp.Description(`JSON array, e.g. [{"name":"Supino Reto","sets":3,"reps":10,"weight":60}]`)),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete a workout permanently."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

// session resolves the stored session, mapping an expired or missing token
// to a tool error telling the user to log in with the CLI.
func (h *handlers) session() (*session.Session, *mcp.CallToolResult) {
	sess, err := h.guard.Check()
	if err == session.ErrUnauthenticated {
		return nil, mcp.NewToolResultError("not logged in: run `treino login` first")
	}
	if err != nil {
		h.log.Error("mcp session check", "error", err)
		return nil, mcp.NewToolResultError("session check failed: " + err.Error())
	}
	return sess, nil
}

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := h.session()
	if errResult != nil {
		return errResult, nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, sess.Token, sess.UserID)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	filtered := models.Filter(workouts,
		req.GetString("date", ""), req.GetString("title", ""))

	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	sess, errResult := h.session()
	if errResult != nil {
		return errResult, nil
	}

	workout, err := h.ds.GetWorkout(ctx, sess.Token, id)
	if err != nil {
		h.log.Error("mcp get_workout", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) createWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required"), nil
	}
	exercisesJSON, err := req.RequireString("exercises")
	if err != nil {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}

	var exercises []models.Exercise
	if err := json.Unmarshal([]byte(exercisesJSON), &exercises); err != nil {
		return mcp.NewToolResultError("exercises is not a valid JSON array: " + err.Error()), nil
	}

	// Run the submission through a draft so the tool enforces the same
	// rules as the interactive flows.
	d := draft.New(time.Now())
	d = d.UpdateTitle(title)
	if date := req.GetString("date", ""); date != "" {
		d, err = d.UpdateDate(date, time.Now())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	for _, ex := range exercises {
		d, err = d.AddExercise(ex)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if errs := d.ValidateForSubmission(); len(errs) > 0 {
		return mcp.NewToolResultError(strings.Join(errs, "\n")), nil
	}

	sess, errResult := h.session()
	if errResult != nil {
		return errResult, nil
	}

	payload := api.Payload{Title: d.Title, Date: d.Date, Exercises: d.Exercises}
	if err := h.ds.CreateWorkout(ctx, sess.Token, payload); err != nil {
		h.log.Error("mcp create_workout", "error", err)
		return mcp.NewToolResultError("create failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText("workout created"), nil
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	sess, errResult := h.session()
	if errResult != nil {
		return errResult, nil
	}

	if err := h.ds.DeleteWorkout(ctx, sess.Token, id); err != nil {
		h.log.Error("mcp delete_workout", "id", id, "error", err)
		return mcp.NewToolResultError("delete failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText("workout deleted"), nil
}

// --- Resource handlers ---

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sess, err := h.guard.Check()
	if err != nil {
		return nil, err
	}

	workouts, err := h.ds.ListWorkouts(ctx, sess.Token, sess.UserID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(models.Filter(workouts, "", ""))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
