// Command treino is a terminal client for the Treinos workout tracker:
// account registration and login, workout listing and inspection, and a
// draft-based create/edit flow that mirrors the web forms.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/guissxs/treinocli/internal/account"
	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/config"
	"github.com/guissxs/treinocli/internal/models"
	"github.com/guissxs/treinocli/internal/session"
	"github.com/guissxs/treinocli/internal/store"
	"github.com/guissxs/treinocli/internal/submit"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// successDisplay is how long a success banner stays before the flow moves
// on, matching the web client.
const successDisplay = 2 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: treino <command> [flags]

Commands:
  register   create an account
  login      log in and store the session token
  logout     discard the session token
  whoami     show the logged-in user
  list       list workouts (filters: -date, -title; offline: -cached)
  show       show one workout by id
  delete     delete a workout by id
  draft      build and submit a new workout (see 'treino draft')
  edit       pull and edit an existing workout (see 'treino edit')
  version    print version and exit
`)
	os.Exit(2)
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	db     *store.DB
	client *api.Client
	guard  *session.Guard
	log    *slog.Logger
}

func newApp(log *slog.Logger) (*app, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		db:     db,
		client: api.NewClient(cfg.API.BaseURL, cfg.API.Timeout()),
		guard:  session.NewGuard(db),
		log:    log,
	}, nil
}

// cliNavigator translates view redirects into next-command hints.
type cliNavigator struct{}

func (cliNavigator) GoTo(path string) {
	switch path {
	case submit.LoginPath:
		fmt.Println("Sessão expirada. Faça login novamente: treino login")
	case submit.WorkoutsPath:
		fmt.Println("Veja seus treinos: treino list")
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]

	if cmd == "version" {
		fmt.Println("treino", Version)
		return
	}

	a, err := newApp(log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.db.Close()

	ctx := context.Background()
	switch cmd {
	case "register":
		err = a.register(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "logout":
		err = a.logout()
	case "whoami":
		err = a.whoami()
	case "list":
		err = a.list(ctx, args)
	case "show":
		err = a.show(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "draft":
		err = a.draftCmd(ctx, args)
	case "edit":
		err = a.editCmd(ctx, args)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 chars, upper, lower, digit)")
	fs.Parse(args)

	if err := account.ValidateRegistration(*name, *email, *password); err != nil {
		return err
	}
	if err := a.client.Register(ctx, *name, *email, *password); err != nil {
		return fmt.Errorf("%s", submit.UserMessage(err, submit.MsgUnexpected))
	}
	fmt.Println(submit.MsgRegistered)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if err := account.ValidateLogin(*email, *password); err != nil {
		return err
	}
	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		if authErr, ok := err.(*api.AuthError); ok && authErr.Message != "" {
			return fmt.Errorf("%s", authErr.Message)
		}
		return fmt.Errorf("%s", submit.UserMessage(err, submit.MsgBadCredentials))
	}
	if err := a.db.SetToken(token); err != nil {
		return err
	}
	fmt.Println("Login realizado com sucesso!")
	return nil
}

func (a *app) logout() error {
	if err := a.db.ClearToken(); err != nil {
		return err
	}
	fmt.Println("Sessão encerrada.")
	return nil
}

func (a *app) whoami() error {
	sess, err := a.guard.Check()
	if err == session.ErrUnauthenticated {
		return fmt.Errorf("não logado: treino login")
	}
	if err != nil {
		return err
	}
	fmt.Printf("Usuário: %s\n", sess.UserID)
	if !sess.ExpiresAt.IsZero() {
		fmt.Printf("Sessão expira em: %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	date := fs.String("date", "", "date filter (substring of YYYY-MM-DD)")
	title := fs.String("title", "", "title filter (case-insensitive substring)")
	cached := fs.Bool("cached", false, "use the locally cached list instead of the server")
	fs.Parse(args)

	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	var workouts []models.Workout
	if *cached {
		var ok bool
		workouts, ok, err = a.db.CachedWorkouts(sess.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("nenhuma lista em cache; rode treino list sem -cached primeiro")
		}
	} else {
		workouts, err = a.client.ListWorkouts(ctx, sess.Token, sess.UserID)
		if err != nil {
			return a.mapListError(err)
		}
		if err := a.db.CacheWorkouts(sess.UserID, workouts); err != nil {
			a.log.Warn("caching workout list failed", "error", err)
		}
	}

	filtered := models.Filter(workouts, *date, *title)
	if len(filtered) == 0 {
		fmt.Println("Nenhum treino encontrado.")
		return nil
	}
	for _, w := range filtered {
		fmt.Printf("%-12s  %s  %s (%d exercícios)\n", w.ID, w.Date, w.Title, len(w.Exercises))
	}
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: treino show <id>")
	}
	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	w, err := a.client.GetWorkout(ctx, sess.Token, args[0])
	if err != nil {
		return a.mapListError(err)
	}
	printWorkout(w)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("uso: treino delete [-yes] <id>")
	}
	id := fs.Arg(0)

	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	if !*yes && !confirm(fmt.Sprintf("Excluir o treino %s? Esta ação não pode ser desfeita.", id)) {
		fmt.Println("Cancelado.")
		return nil
	}

	if err := a.client.DeleteWorkout(ctx, sess.Token, id); err != nil {
		return a.mapListError(err)
	}
	fmt.Println(submit.MsgDeleted)
	return nil
}

// requireSession resolves the stored session or tells the user to log in.
func (a *app) requireSession() (*session.Session, error) {
	sess, err := a.guard.Check()
	if err == session.ErrUnauthenticated {
		return nil, fmt.Errorf("não logado: treino login")
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// mapListError turns API errors into user-facing messages; a rejected token
// also evicts the stored session.
func (a *app) mapListError(err error) error {
	if _, ok := err.(*api.AuthError); ok {
		if evictErr := a.guard.Evict(); evictErr != nil {
			a.log.Error("token eviction failed", "error", evictErr)
		}
		return fmt.Errorf("sessão expirada: treino login")
	}
	return fmt.Errorf("%s", submit.UserMessage(err, submit.MsgUnexpected))
}

func printWorkout(w models.Workout) {
	fmt.Printf("%s  %s  (id %s)\n", w.Date, w.Title, w.ID)
	for i, ex := range w.Exercises {
		line := fmt.Sprintf("  %d. %s  %dx%d", i+1, ex.Name, ex.Sets, ex.Reps)
		if ex.Weight != nil {
			line += fmt.Sprintf("  %.1fkg", *ex.Weight)
		}
		if ex.Notes != "" {
			line += "  (" + ex.Notes + ")"
		}
		fmt.Println(line)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [s/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "s" || answer == "sim" || answer == "y" || answer == "yes"
}
