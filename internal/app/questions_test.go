package app_test

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
)

func emptyBank(t *testing.T) (*app.QuestionBank, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seed(t, store, domain.KeyQuestions, "[]")
	bank := app.NewQuestionBank(store, nil)
	if got := bank.Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty bank, got %d", len(got))
	}
	return bank, store
}

func TestAddAssignsNextFreeID(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)

	q, err := bank.Add(ctx, domain.QuestionDraft{Text: "Q1", Answer: "A1"}, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.ID != 1 {
		t.Fatalf("expected id 1 on empty bank, got %d", q.ID)
	}

	q, err = bank.Add(ctx, domain.QuestionDraft{Text: "Q2", Answer: "A2"}, intp(1))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.ID != 2 {
		t.Fatalf("expected taken id 1 to move up to 2, got %d", q.ID)
	}
}

func TestAddMovesUpToFreeIDAndSorts(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	for _, id := range []int{5, 1, 3, 2} {
		if _, err := bank.Add(ctx, domain.QuestionDraft{Text: "q"}, intp(id)); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}

	q, _ := bank.Add(ctx, domain.QuestionDraft{Text: "taken"}, intp(2))
	if q.ID != 4 {
		t.Fatalf("expected smallest free id >= 2 to be 4, got %d", q.ID)
	}
	q, _ = bank.Add(ctx, domain.QuestionDraft{Text: "next"}, nil)
	if q.ID != 6 {
		t.Fatalf("expected max+1 = 6, got %d", q.ID)
	}
	if got := questionIDs(bank.All()); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("expected sorted ids, got %v", got)
	}
}

func TestAddTreatsZeroIDAsUnset(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	if _, err := bank.Add(ctx, domain.QuestionDraft{Text: "q"}, intp(7)); err != nil {
		t.Fatalf("add: %v", err)
	}
	q, err := bank.Add(ctx, domain.QuestionDraft{Text: "zero"}, intp(0))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.ID != 8 {
		t.Fatalf("expected id 0 to mean max+1 = 8, got %d", q.ID)
	}
	if _, ok := bank.Get(0); ok {
		t.Fatalf("no question may be stored under id 0")
	}
}

func TestEditRejectsCollisionAndLeavesBankUnchanged(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	bank.Add(ctx, domain.QuestionDraft{Text: "one"}, nil)
	bank.Add(ctx, domain.QuestionDraft{Text: "two"}, nil)
	before := bank.All()

	err := bank.Edit(ctx, 1, domain.Question{ID: 2, Text: "clash"})
	if !errors.Is(err, domain.ErrIDTaken) {
		t.Fatalf("expected ErrIDTaken, got %v", err)
	}
	if !reflect.DeepEqual(before, bank.All()) {
		t.Fatalf("bank changed after rejected edit")
	}

	if err := bank.Edit(ctx, 1, domain.Question{ID: 1, Text: "one, reworded"}); err != nil {
		t.Fatalf("edit keeping id: %v", err)
	}
	if err := bank.Edit(ctx, 2, domain.Question{ID: 9, Text: "moved"}); err != nil {
		t.Fatalf("edit moving id: %v", err)
	}
	if got := questionIDs(bank.All()); !reflect.DeepEqual(got, []int{1, 9}) {
		t.Fatalf("expected ids [1 9], got %v", got)
	}
	if q, _ := bank.Get(1); q.Text != "one, reworded" {
		t.Fatalf("expected reworded text, got %q", q.Text)
	}
}

func TestEditUnknownIDInserts(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	if err := bank.Edit(ctx, 42, domain.Question{ID: 7, Text: "new"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, ok := bank.Get(7); !ok {
		t.Fatalf("expected question 7 to be inserted")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	bank.Add(ctx, domain.QuestionDraft{Text: "one", Answer: "a"}, nil)

	if err := bank.Update(ctx, domain.Question{ID: 3}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := bank.Update(ctx, domain.Question{ID: 1, Text: "uno", Answer: "b"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if q, _ := bank.Get(1); q.Answer != "b" {
		t.Fatalf("expected updated answer, got %q", q.Answer)
	}

	if err := bank.Delete(ctx, 99); err != nil {
		t.Fatalf("delete of absent id should be a no-op, got %v", err)
	}
	if err := bank.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if bank.Len() != 0 {
		t.Fatalf("expected empty bank, got %d", bank.Len())
	}
}

func TestRandomMutationsKeepIDsUnique(t *testing.T) {
	ctx := context.Background()
	bank, _ := emptyBank(t)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		switch rnd.Intn(3) {
		case 0:
			var id *int
			if rnd.Intn(2) == 0 {
				id = intp(rnd.Intn(20))
			}
			if _, err := bank.Add(ctx, domain.QuestionDraft{Text: "q"}, id); err != nil {
				t.Fatalf("add: %v", err)
			}
		case 1:
			err := bank.Edit(ctx, rnd.Intn(20), domain.Question{ID: rnd.Intn(20), Text: "e"})
			if err != nil && !errors.Is(err, domain.ErrIDTaken) {
				t.Fatalf("edit: %v", err)
			}
		case 2:
			if err := bank.Delete(ctx, rnd.Intn(20)); err != nil {
				t.Fatalf("delete: %v", err)
			}
		}

		seen := map[int]bool{}
		for _, q := range bank.All() {
			if seen[q.ID] {
				t.Fatalf("step %d: duplicate id %d", i, q.ID)
			}
			seen[q.ID] = true
		}
	}
}

func TestQuestionsPersistAndFallBack(t *testing.T) {
	ctx := context.Background()
	bank, store := emptyBank(t)
	bank.Add(ctx, domain.QuestionDraft{Text: "kept"}, intp(12))

	reloaded := app.NewQuestionBank(store, nil)
	if got := questionIDs(reloaded.Load(ctx)); !reflect.DeepEqual(got, []int{12}) {
		t.Fatalf("expected persisted [12], got %v", got)
	}

	seed(t, store, domain.KeyQuestions, "{not json")
	if got := reloaded.Load(ctx); len(got) != len(domain.DefaultQuestions()) {
		t.Fatalf("expected bundled questions after corrupt record, got %d", len(got))
	}
}

func TestFindRoundForFirstDeclaredWins(t *testing.T) {
	bank, _ := emptyBank(t)
	rounds := []domain.Round{
		{Title: "A", Range: [2]int{1, 10}},
		{Title: "B", Range: [2]int{5, 15}},
		{Title: "Inverted", Range: [2]int{30, 20}},
	}
	if r, ok := bank.FindRoundFor(7, rounds, true); !ok || r.Title != "A" {
		t.Fatalf("expected round A for overlapping id, got %+v %v", r, ok)
	}
	if r, ok := bank.FindRoundFor(12, rounds, true); !ok || r.Title != "B" {
		t.Fatalf("expected round B, got %+v %v", r, ok)
	}
	if _, ok := bank.FindRoundFor(25, rounds, true); ok {
		t.Fatalf("inverted range must match nothing")
	}
	if _, ok := bank.FindRoundFor(7, rounds, false); ok {
		t.Fatalf("disabled rounds must match nothing")
	}
}
