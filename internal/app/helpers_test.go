package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// stillTicker never fires; countdown tests drive ticks explicitly.
func stillTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

type recordingPlayer struct {
	mu     sync.Mutex
	played []domain.SoundEffect
}

func (p *recordingPlayer) Play(effect domain.SoundEffect) {
	p.mu.Lock()
	p.played = append(p.played, effect)
	p.mu.Unlock()
}

func (p *recordingPlayer) Played() []domain.SoundEffect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SoundEffect(nil), p.played...)
}

func newTestService(t *testing.T, opts ...app.Option) (*app.QuizService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	opts = append([]app.Option{app.WithClock(func() time.Time { return fixedNow }), app.WithTicker(stillTicker)}, opts...)
	svc := app.NewQuizService(store, opts...)
	svc.Load(context.Background())
	t.Cleanup(svc.Shutdown)
	return svc, store
}

func seed(t *testing.T, store *memory.Store, key, value string) {
	t.Helper()
	if err := store.Set(context.Background(), key, []byte(value)); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func questionIDs(questions []domain.Question) []int {
	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func intp(v int) *int { return &v }
