package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/guissxs/treinocli/internal/draft"
	"github.com/guissxs/treinocli/internal/models"
	"github.com/guissxs/treinocli/internal/store"
	"github.com/guissxs/treinocli/internal/submit"
)

func draftUsage() error {
	return fmt.Errorf(`uso: treino draft <subcomando>

  new                          start a new workout draft
  title <texto>                set the title
  date <YYYY-MM-DD>            set the date (not in the future)
  add -name <n> [flags]        add an exercise (-sets, -reps, -weight, -notes)
  remove <n>                   remove exercise number n
  show                         print the draft
  discard                      throw the draft away
  submit                       validate and send the draft to the server`)
}

func (a *app) draftCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return draftUsage()
	}
	return a.runDraftOp(ctx, store.KindCreate, args[0], args[1:])
}

func (a *app) editCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf(`uso: treino edit <subcomando>

  pull <id>                    start editing an existing workout
  title, date, add, remove, show, discard, submit
                               as in treino draft, applied to the pulled workout`)
	}
	if args[0] == "pull" {
		return a.editPull(ctx, args[1:])
	}
	return a.runDraftOp(ctx, store.KindEdit, args[0], args[1:])
}

// editPull fetches a workout and stores it as the edit draft.
func (a *app) editPull(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: treino edit pull <id>")
	}
	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	w, err := a.client.GetWorkout(ctx, sess.Token, args[0])
	if err != nil {
		return a.mapListError(err)
	}

	d := draft.FromWorkout(w)
	if err := a.db.SaveDraft(store.KindEdit, d); err != nil {
		return err
	}
	fmt.Printf("Editando %q. Altere com treino edit title/date/add/remove e salve com treino edit submit.\n", d.Title)
	return nil
}

func (a *app) runDraftOp(ctx context.Context, kind, op string, args []string) error {
	switch op {
	case "new":
		if kind != store.KindCreate {
			return draftUsage()
		}
		d := draft.New(time.Now())
		if err := a.db.SaveDraft(kind, d); err != nil {
			return err
		}
		fmt.Printf("Novo rascunho criado com data %s.\n", d.Date)
		return nil
	case "show":
		d, err := a.loadDraft(kind)
		if err != nil {
			return err
		}
		printDraft(d)
		return nil
	case "discard":
		if err := a.db.DeleteDraft(kind); err != nil {
			return err
		}
		fmt.Println("Rascunho descartado.")
		return nil
	case "title":
		if len(args) != 1 {
			return fmt.Errorf("uso: treino %s title <texto>", cmdName(kind))
		}
		return a.mutateDraft(kind, func(d draft.Draft) (draft.Draft, error) {
			return d.UpdateTitle(args[0]), nil
		})
	case "date":
		if len(args) != 1 {
			return fmt.Errorf("uso: treino %s date <YYYY-MM-DD>", cmdName(kind))
		}
		return a.mutateDraft(kind, func(d draft.Draft) (draft.Draft, error) {
			return d.UpdateDate(args[0], time.Now())
		})
	case "add":
		return a.addExercise(kind, args)
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("uso: treino %s remove <n>", cmdName(kind))
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("número de exercício inválido: %q", args[0])
		}
		return a.mutateDraft(kind, func(d draft.Draft) (draft.Draft, error) {
			if n < 1 || n > len(d.Exercises) {
				return d, fmt.Errorf("exercício %d não existe; o rascunho tem %d", n, len(d.Exercises))
			}
			return d.RemoveExercise(n - 1), nil
		})
	case "submit":
		return a.submitDraft(ctx, kind)
	default:
		return draftUsage()
	}
}

func cmdName(kind string) string {
	if kind == store.KindEdit {
		return "edit"
	}
	return "draft"
}

func (a *app) loadDraft(kind string) (draft.Draft, error) {
	d, ok, err := a.db.LoadDraft(kind)
	if err != nil {
		return draft.Draft{}, err
	}
	if !ok {
		if kind == store.KindEdit {
			return draft.Draft{}, fmt.Errorf("nenhum treino em edição: treino edit pull <id>")
		}
		return draft.Draft{}, fmt.Errorf("nenhum rascunho: treino draft new")
	}
	return d, nil
}

func (a *app) mutateDraft(kind string, fn func(draft.Draft) (draft.Draft, error)) error {
	d, err := a.loadDraft(kind)
	if err != nil {
		return err
	}
	d, err = fn(d)
	if err != nil {
		return err
	}
	return a.db.SaveDraft(kind, d)
}

func (a *app) addExercise(kind string, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "exercise name")
	sets := fs.Int("sets", draft.DefaultSets, "number of sets")
	reps := fs.Int("reps", draft.DefaultReps, "repetitions per set")
	weight := fs.Float64("weight", -1, "weight in kg (omit if bodyweight)")
	notes := fs.String("notes", "", "free-form notes")
	fs.Parse(args)

	ex := models.Exercise{Name: *name, Sets: *sets, Reps: *reps, Notes: *notes}
	if *weight >= 0 {
		ex.Weight = weight
	}

	return a.mutateDraft(kind, func(d draft.Draft) (draft.Draft, error) {
		return d.AddExercise(ex)
	})
}

func (a *app) submitDraft(ctx context.Context, kind string) error {
	d, err := a.loadDraft(kind)
	if err != nil {
		return err
	}

	ctrl := submit.NewController(a.guard, a.client, cliNavigator{}, successDisplay, a.log)

	var res submit.Result
	if kind == store.KindEdit {
		res = ctrl.SubmitEdit(ctx, d)
	} else {
		res = ctrl.SubmitCreate(ctx, d)
	}

	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if !res.OK {
		return nil
	}

	if err := a.db.DeleteDraft(kind); err != nil {
		return err
	}
	if kind == store.KindEdit {
		// Wait out the success display so the navigation hint prints.
		waitIdle(ctrl)
	}
	return nil
}

func waitIdle(c *submit.Controller) {
	deadline := time.Now().Add(successDisplay + time.Second)
	for time.Now().Before(deadline) {
		if c.State() == submit.Idle {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func printDraft(d draft.Draft) {
	title := d.Title
	if title == "" {
		title = "(sem título)"
	}
	fmt.Printf("%s  %s", d.Date, title)
	if d.WorkoutID != "" {
		fmt.Printf("  (editando %s)", d.WorkoutID)
	}
	if d.Changed {
		fmt.Print("  *alterações não salvas")
	}
	fmt.Println()
	if len(d.Exercises) == 0 {
		fmt.Println("  (nenhum exercício)")
		return
	}
	for i, ex := range d.Exercises {
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
