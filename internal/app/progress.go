package app

import (
	"context"
	"sync"

	"quizmaster/internal/domain"

	"go.uber.org/zap"
)

// ProgressTracker records which questions have been opened. Ids only leave the set on Reset.
type ProgressTracker struct {
	store KeyValueStore
	log   *zap.Logger

	mu      sync.RWMutex
	order   []int
	visited map[int]struct{}
}

func NewProgressTracker(store KeyValueStore, log *zap.Logger) *ProgressTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressTracker{store: store, log: log, visited: make(map[int]struct{})}
}

func (p *ProgressTracker) Load(ctx context.Context) []int {
	var stored []int
	if _, err := loadJSON(ctx, p.store, domain.KeyVisited, &stored); err != nil {
		p.log.Warn("visited list unreadable, starting empty", zap.String("key", domain.KeyVisited), zap.Error(err))
		stored = nil
	}

	order := make([]int, 0, len(stored))
	set := make(map[int]struct{}, len(stored))
	for _, id := range stored {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		order = append(order, id)
	}

	p.mu.Lock()
	p.order, p.visited = order, set
	p.mu.Unlock()
	return append([]int(nil), order...)
}

// MarkVisited adds id to the set and persists it. Repeated calls leave the set unchanged.
func (p *ProgressTracker) MarkVisited(ctx context.Context, id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.order
	if _, ok := p.visited[id]; !ok {
		next = append(append(make([]int, 0, len(p.order)+1), p.order...), id)
	}
	if err := saveJSON(ctx, p.store, domain.KeyVisited, next); err != nil {
		return err
	}
	p.order = next
	p.visited[id] = struct{}{}
	return nil
}

func (p *ProgressTracker) IsVisited(id int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.visited[id]
	return ok
}

// Visited returns the ids in the order they were first opened.
func (p *ProgressTracker) Visited() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]int(nil), p.order...)
}

// CanOpen reports whether id may be opened. Visited ids need the override.
func (p *ProgressTracker) CanOpen(id int, override bool) bool {
	return override || !p.IsVisited(id)
}

// Stats summarizes progress against total questions.
func (p *ProgressTracker) Stats(total int) domain.GridStats {
	p.mu.RLock()
	completed := len(p.order)
	p.mu.RUnlock()

	remaining := total - completed
	if remaining < 0 {
		remaining = 0
	}
	return domain.GridStats{Total: total, Completed: completed, Remaining: remaining}
}

// Reset clears every visited id once c confirms.
func (p *ProgressTracker) Reset(ctx context.Context, c Confirmer) error {
	if err := confirm(c, "Reset all question progress?"); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := deleteKey(ctx, p.store, domain.KeyVisited); err != nil {
		return err
	}
	p.order = nil
	p.visited = make(map[int]struct{})
	return nil
}
