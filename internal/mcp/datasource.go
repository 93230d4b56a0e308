package mcp

import (
	"context"

	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/models"
)

// DataSource is the slice of the REST client the MCP tools need.
// *api.Client satisfies it.
type DataSource interface {
	ListWorkouts(ctx context.Context, token, userID string) ([]models.Workout, error)
	GetWorkout(ctx context.Context, token, id string) (models.Workout, error)
	CreateWorkout(ctx context.Context, token string, p api.Payload) error
	DeleteWorkout(ctx context.Context, token, id string) error
}
