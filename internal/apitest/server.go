// Package apitest is an in-memory fake of the Treinos REST API. It speaks
// the same `{success, data|workouts, message}` envelope and bearer auth as
// the real server, and failures can be scripted per request. Only tests use
// it.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/guissxs/treinocli/internal/models"
)

// Server is a fake Treinos API backed by in-memory maps.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string // email -> password
	tokens   map[string]string // bearer token -> userID
	workouts map[string]models.Workout
	nextID   int

	listKey     string // envelope key for the workout list
	failStatus  int
	failMessage string
}

// New starts a fake server. Callers must Close it.
func New() *Server {
	s := &Server{
		users:    make(map[string]string),
		tokens:   make(map[string]string),
		workouts: make(map[string]models.Workout),
		listKey:  "data",
	}

	r := chi.NewRouter()
	r.Post("/users/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Route("/Workout", func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/", s.handleCreate)
		r.Get("/user/{userID}", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// SeedUser registers an account without going through the API.
func (s *Server) SeedUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// SeedWorkout stores a workout directly, assigning an id when absent.
func (s *Server) SeedWorkout(w models.Workout) models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		s.nextID++
		w.ID = fmt.Sprintf("w%d", s.nextID)
	}
	s.workouts[w.ID] = w
	return w
}

// Workout returns the stored workout with the given id.
func (s *Server) Workout(id string) (models.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[id]
	return w, ok
}

// WorkoutCount returns how many workouts the server holds.
func (s *Server) WorkoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workouts)
}

// IssueToken mints a decodable bearer token for userID, valid for ttl, and
// registers it so authenticated endpoints accept it.
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(ttl).Unix(),
		"iat":    time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("apitest"))
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return token
}

// RevokeToken makes the server answer 401 for a previously issued token,
// regardless of its expiry claim.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// FailNext makes the next authenticated workout request answer with the
// given status and message instead of its normal behavior.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failMessage = message
}

// UseWorkoutsKey makes list responses put the slice under "workouts"
// instead of "data", as some deployments of the API do.
func (s *Server) UseWorkoutsKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listKey = "workouts"
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "missing token"})
			return
		}

		s.mu.Lock()
		_, ok := s.tokens[header[len(prefix):]]
		failStatus, failMessage := s.failStatus, s.failMessage
		s.failStatus, s.failMessage = 0, ""
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid token"})
			return
		}
		if failStatus != 0 {
			body := map[string]any{}
			if failMessage != "" {
				body["message"] = failMessage
			}
			writeJSON(w, failStatus, body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "email already registered"})
		return
	}
	s.users[body.Email] = body.Password
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	password, exists := s.users[body.Email]
	s.mu.Unlock()
	if !exists || password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Credenciais inválidas"})
		return
	}

	token := s.IssueToken("user-"+body.Email, time.Hour)
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Title     string            `json:"title"`
		Date      string            `json:"date"`
		Exercises []models.Exercise `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	s.nextID++
	workout := models.Workout{
		ID:        fmt.Sprintf("w%d", s.nextID),
		Title:     p.Title,
		Date:      p.Date,
		Exercises: p.Exercises,
	}
	s.workouts[workout.ID] = workout
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": workout})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	workout, ok := s.workouts[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": workout})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Title     string            `json:"title"`
		Date      string            `json:"date"`
		Exercises []models.Exercise `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	workout, ok := s.workouts[id]
	if ok {
		workout.Title = p.Title
		workout.Date = p.Date
		workout.Exercises = p.Exercises
		s.workouts[id] = workout
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": workout})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.workouts[id]
	delete(s.workouts, id)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	list := make([]models.Workout, 0)
	for _, workout := range s.workouts {
		if workout.UserID == "" || workout.UserID == userID {
			list = append(list, workout)
		}
	}
	listKey := s.listKey
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, listKey: list})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
