// Package api is the HTTP client for the Treinos REST API. Responses use a
// `{success, data|workouts, message}` envelope; a 2xx whose envelope lacks
// success:true is treated as an application-level failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guissxs/treinocli/internal/models"
)

// Client talks to the Treinos server over HTTP. All methods take the bearer
// token explicitly; the session guard owns token lifecycle.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Payload is the request body for creating or updating a workout.
type Payload struct {
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Exercises []models.Exercise `json:"exercises"`
}

// envelope is the server's response wrapper. Endpoints disagree on whether
// the list lives under data or workouts, so both are kept.
type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Token    string          `json:"token"`
	Data     json.RawMessage `json:"data"`
	Workouts json.RawMessage `json:"workouts"`

	status int
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	env := &envelope{status: resp.StatusCode}
	if len(raw) > 0 {
		// Best-effort decode: classification falls back to the status code
		// when the body isn't the expected shape.
		_ = json.Unmarshal(raw, env)
	}

	if err := classify(resp.StatusCode, env); err != nil {
		return nil, err
	}
	return env, nil
}

// classify maps an error status to the error taxonomy. 401, 404 and 409
// keep their distinct types; anything else surfaces the server's message
// when one exists.
func classify(status int, env *envelope) error {
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Message: env.Message}
	case status == http.StatusNotFound:
		return &NotFoundError{Message: env.Message}
	case status == http.StatusConflict:
		return &ConflictError{Message: env.Message}
	case status >= 400:
		if env.Message != "" {
			return &ServerMessageError{Status: status, Message: env.Message}
		}
		return &UnexpectedError{Status: status}
	}
	return nil
}

// checkSuccess enforces the envelope contract on 2xx responses.
func checkSuccess(env *envelope) error {
	if env.Success {
		return nil
	}
	if env.Message != "" {
		return &ServerMessageError{Status: env.status, Message: env.Message}
	}
	return &UnexpectedError{Status: env.status}
}

// Register creates a new account. No token is required.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	env, err := c.do(ctx, http.MethodPost, "/users/register", "", body)
	if err != nil {
		return err
	}
	return checkSuccess(env)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", &UnexpectedError{Status: env.status}
	}
	return env.Token, nil
}

// GetWorkout fetches a single workout by id.
func (c *Client) GetWorkout(ctx context.Context, token, id string) (models.Workout, error) {
	env, err := c.do(ctx, http.MethodGet, "/Workout/"+id, token, nil)
	if err != nil {
		return models.Workout{}, err
	}
	if err := checkSuccess(env); err != nil {
		return models.Workout{}, err
	}

	var w models.Workout
	if err := json.Unmarshal(env.Data, &w); err != nil {
		return models.Workout{}, &UnexpectedError{Status: env.status}
	}
	return w, nil
}

// CreateWorkout submits a new workout.
func (c *Client) CreateWorkout(ctx context.Context, token string, p Payload) error {
	env, err := c.do(ctx, http.MethodPost, "/Workout/", token, p)
	if err != nil {
		return err
	}
	return checkSuccess(env)
}

// UpdateWorkout replaces an existing workout.
func (c *Client) UpdateWorkout(ctx context.Context, token, id string, p Payload) error {
	env, err := c.do(ctx, http.MethodPut, "/Workout/"+id, token, p)
	if err != nil {
		return err
	}
	return checkSuccess(env)
}

// DeleteWorkout removes a workout by id.
func (c *Client) DeleteWorkout(ctx context.Context, token, id string) error {
	env, err := c.do(ctx, http.MethodDelete, "/Workout/"+id, token, nil)
	if err != nil {
		return err
	}
	return checkSuccess(env)
}

// ListWorkouts fetches every workout belonging to userID. The server has
// answered with the list under either data or workouts; both are accepted.
func (c *Client) ListWorkouts(ctx context.Context, token, userID string) ([]models.Workout, error) {
	env, err := c.do(ctx, http.MethodGet, "/Workout/user/"+userID, token, nil)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess(env); err != nil {
		return nil, err
	}

	raw := env.Data
	if len(raw) == 0 || string(raw) == "null" {
		raw = env.Workouts
	}
	if len(raw) == 0 || string(raw) == "null" {
		return []models.Workout{}, nil
	}

	var workouts []models.Workout
	if err := json.Unmarshal(raw, &workouts); err != nil {
		return nil, &UnexpectedError{Status: env.status}
	}
	return workouts, nil
}
