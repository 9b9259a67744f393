package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quizmaster/internal/domain"

	"go.uber.org/zap"
)

// QuestionBank owns the persisted question collection. Ids are unique at all times.
type QuestionBank struct {
	store KeyValueStore
	log   *zap.Logger

	mu        sync.RWMutex
	questions []domain.Question
}

func NewQuestionBank(store KeyValueStore, log *zap.Logger) *QuestionBank {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionBank{store: store, log: log, questions: domain.DefaultQuestions()}
}

// Load reads the persisted questions, falling back to the bundled set.
func (b *QuestionBank) Load(ctx context.Context) []domain.Question {
	questions := domain.DefaultQuestions()
	var stored []domain.Question
	found, err := loadJSON(ctx, b.store, domain.KeyQuestions, &stored)
	switch {
	case err != nil:
		b.log.Warn("questions unreadable, using defaults", zap.String("key", domain.KeyQuestions), zap.Error(err))
	case found && stored != nil:
		questions = stored
	}

	b.mu.Lock()
	b.questions = questions
	b.mu.Unlock()
	return cloneQuestions(questions)
}

// All returns the questions in stored order.
func (b *QuestionBank) All() []domain.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneQuestions(b.questions)
}

func (b *QuestionBank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

func (b *QuestionBank) Get(id int) (domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := indexOf(b.questions, id)
	if i < 0 {
		return domain.Question{}, false
	}
	return b.questions[i], true
}

// Add stores draft under the next free id. Without specificID (nil or 0) the id is max+1
// (1 when empty). A taken specificID moves up to the first free id; the assigned
// question is returned.
func (b *QuestionBank) Add(ctx context.Context, draft domain.QuestionDraft, specificID *int) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var id int
	if specificID != nil && *specificID != 0 {
		id = *specificID
		for indexOf(b.questions, id) >= 0 {
			id++
		}
	} else {
		id = nextID(b.questions)
	}

	q := draft.WithID(id)
	next := append(cloneQuestions(b.questions), q)
	sortQuestions(next)
	if err := b.saveLocked(ctx, next); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// Edit removes oldID and inserts q in its place. It fails with ErrIDTaken, leaving the
// collection unchanged, when q.ID belongs to another question. An unknown oldID inserts q.
func (b *QuestionBank) Edit(ctx context.Context, oldID int, q domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make([]domain.Question, 0, len(b.questions)+1)
	for _, existing := range b.questions {
		if existing.ID != oldID {
			next = append(next, existing)
		}
	}
	if indexOf(next, q.ID) >= 0 {
		return fmt.Errorf("question %d: %w", q.ID, domain.ErrIDTaken)
	}
	next = append(next, q)
	sortQuestions(next)
	return b.saveLocked(ctx, next)
}

// Update replaces the content of the question with q's id.
func (b *QuestionBank) Update(ctx context.Context, q domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := indexOf(b.questions, q.ID)
	if i < 0 {
		return fmt.Errorf("question %d: %w", q.ID, domain.ErrQuestionNotFound)
	}
	next := cloneQuestions(b.questions)
	next[i] = q
	return b.saveLocked(ctx, next)
}

// Delete removes id if present.
func (b *QuestionBank) Delete(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := indexOf(b.questions, id)
	if i < 0 {
		return nil
	}
	next := make([]domain.Question, 0, len(b.questions)-1)
	next = append(next, b.questions[:i]...)
	next = append(next, b.questions[i+1:]...)
	return b.saveLocked(ctx, next)
}

// Replace swaps the whole collection, as import does.
func (b *QuestionBank) Replace(ctx context.Context, questions []domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveLocked(ctx, cloneQuestions(questions))
}

// FindRoundFor returns the round id belongs to under rounds.
func (b *QuestionBank) FindRoundFor(id int, rounds []domain.Round, enableRounds bool) (domain.Round, bool) {
	return domain.FindRound(id, rounds, enableRounds)
}

func (b *QuestionBank) saveLocked(ctx context.Context, next []domain.Question) error {
	if next == nil {
		next = []domain.Question{}
	}
	if err := saveJSON(ctx, b.store, domain.KeyQuestions, next); err != nil {
		return err
	}
	b.questions = next
	return nil
}

func nextID(questions []domain.Question) int {
	if len(questions) == 0 {
		return 1
	}
	highest := questions[0].ID
	for _, q := range questions[1:] {
		if q.ID > highest {
			highest = q.ID
		}
	}
	return highest + 1
}

func indexOf(questions []domain.Question, id int) int {
	for i, q := range questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func sortQuestions(questions []domain.Question) {
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
}

func cloneQuestions(questions []domain.Question) []domain.Question {
	return append([]domain.Question(nil), questions...)
}
