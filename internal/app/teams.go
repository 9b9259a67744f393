package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"quizmaster/internal/domain"

	"go.uber.org/zap"
)

// ScoreKind selects one of the configured quick-score deltas.
type ScoreKind string

const (
	ScoreCorrect ScoreKind = "correct"
	ScoreBonus   ScoreKind = "bonus"
	ScorePenalty ScoreKind = "penalty"
)

// Delta returns the configured delta for kind.
func (k ScoreKind) Delta(s domain.ScoringConfig) (int, error) {
	switch k {
	case ScoreCorrect:
		return s.Correct, nil
	case ScoreBonus:
		return s.Bonus, nil
	case ScorePenalty:
		return s.Penalty, nil
	}
	return 0, fmt.Errorf("unknown score kind %q", k)
}

// TeamLedger owns the teams and the active team pointer.
type TeamLedger struct {
	store KeyValueStore
	log   *zap.Logger
	now   func() time.Time

	mu     sync.RWMutex
	teams  []domain.Team
	active string
}

func NewTeamLedger(store KeyValueStore, log *zap.Logger) *TeamLedger {
	return newTeamLedgerWithClock(store, log, time.Now)
}

// newTeamLedgerWithClock allows deterministic team ids in tests.
func newTeamLedgerWithClock(store KeyValueStore, log *zap.Logger, now func() time.Time) *TeamLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &TeamLedger{store: store, log: log, now: now}
}

func (l *TeamLedger) Load(ctx context.Context) []domain.Team {
	var teams []domain.Team
	if _, err := loadJSON(ctx, l.store, domain.KeyTeams, &teams); err != nil {
		l.log.Warn("teams unreadable, starting empty", zap.String("key", domain.KeyTeams), zap.Error(err))
		teams = nil
	}

	active := ""
	raw, err := l.store.Get(ctx, domain.KeyActiveTeam)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
	case err != nil:
		l.log.Warn("active team unreadable", zap.String("key", domain.KeyActiveTeam), zap.Error(err))
	default:
		active = strings.TrimSpace(string(raw))
	}

	l.mu.Lock()
	l.teams, l.active = teams, active
	l.mu.Unlock()
	return cloneTeams(teams)
}

// Teams returns the teams in insertion order.
func (l *TeamLedger) Teams() []domain.Team {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneTeams(l.teams)
}

// AddTeam appends a team with score 0 and a millisecond timestamp id.
func (l *TeamLedger) AddTeam(ctx context.Context, name string) (domain.Team, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamp := l.now().UnixMilli()
	id := strconv.FormatInt(stamp, 10)
	for teamIndex(l.teams, id) >= 0 {
		stamp++
		id = strconv.FormatInt(stamp, 10)
	}

	team := domain.Team{ID: id, Name: name}
	next := append(cloneTeams(l.teams), team)
	if err := l.saveLocked(ctx, next); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

// DeleteTeam removes id and clears the active pointer when it referenced that team.
func (l *TeamLedger) DeleteTeam(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := teamIndex(l.teams, id)
	if i < 0 {
		return nil
	}
	next := make([]domain.Team, 0, len(l.teams)-1)
	next = append(next, l.teams[:i]...)
	next = append(next, l.teams[i+1:]...)
	if err := l.saveLocked(ctx, next); err != nil {
		return err
	}
	if l.active == id {
		return l.setActiveLocked(ctx, "")
	}
	return nil
}

// UpdateScore adds delta to the team's score. Scores have no floor or ceiling.
func (l *TeamLedger) UpdateScore(ctx context.Context, id string, delta int) (domain.Team, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := teamIndex(l.teams, id)
	if i < 0 {
		return domain.Team{}, fmt.Errorf("team %s: %w", id, domain.ErrTeamNotFound)
	}
	return l.scoreLocked(ctx, i, delta)
}

func (l *TeamLedger) scoreLocked(ctx context.Context, i, delta int) (domain.Team, error) {
	next := cloneTeams(l.teams)
	next[i].Score += delta
	if err := l.saveLocked(ctx, next); err != nil {
		return domain.Team{}, err
	}
	return next[i], nil
}

// SetActiveTeam points quick scoring at id. An empty id clears the pointer.
func (l *TeamLedger) SetActiveTeam(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id != "" && teamIndex(l.teams, id) < 0 {
		return fmt.Errorf("team %s: %w", id, domain.ErrTeamNotFound)
	}
	return l.setActiveLocked(ctx, id)
}

func (l *TeamLedger) ActiveTeam() (domain.Team, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := teamIndex(l.teams, l.active)
	if l.active == "" || i < 0 {
		return domain.Team{}, false
	}
	return l.teams[i], true
}

// ScoreActive applies delta to the active team.
func (l *TeamLedger) ScoreActive(ctx context.Context, delta int) (domain.Team, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := teamIndex(l.teams, l.active)
	if l.active == "" || i < 0 {
		return domain.Team{}, domain.ErrNoActiveTeam
	}
	return l.scoreLocked(ctx, i, delta)
}

// Standings orders teams by descending score; ties keep insertion order.
func (l *TeamLedger) Standings() []domain.Standing {
	l.mu.RLock()
	teams := cloneTeams(l.teams)
	active := l.active
	l.mu.RUnlock()

	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Score > teams[j].Score })
	out := make([]domain.Standing, len(teams))
	for i, t := range teams {
		out[i] = domain.Standing{Rank: i + 1, Team: t, Active: t.ID == active}
	}
	return out
}

func (l *TeamLedger) Scoreboard() domain.Scoreboard {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()
	return domain.Scoreboard{
		ActiveTeamID: active,
		Standings:    l.Standings(),
		UpdatedAt:    l.now(),
	}
}

func (l *TeamLedger) saveLocked(ctx context.Context, next []domain.Team) error {
	if next == nil {
		next = []domain.Team{}
	}
	if err := saveJSON(ctx, l.store, domain.KeyTeams, next); err != nil {
		return err
	}
	l.teams = next
	return nil
}

func (l *TeamLedger) setActiveLocked(ctx context.Context, id string) error {
	if id == "" {
		if err := deleteKey(ctx, l.store, domain.KeyActiveTeam); err != nil {
			return err
		}
	} else if err := l.store.Set(ctx, domain.KeyActiveTeam, []byte(id)); err != nil {
		return fmt.Errorf("save %s: %w", domain.KeyActiveTeam, err)
	}
	l.active = id
	return nil
}

func teamIndex(teams []domain.Team, id string) int {
	for i, t := range teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTeams(teams []domain.Team) []domain.Team {
	return append([]domain.Team(nil), teams...)
}
