package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"quizmaster/internal/cue"
	"quizmaster/internal/domain"
	"quizmaster/internal/media"
	"quizmaster/internal/sheet"
	"quizmaster/internal/theme"

	"go.uber.org/zap"
)

// EventType tags an outbound presenter event.
type EventType string

const (
	EventSnapshot     EventType = "snapshot"
	EventSession      EventType = "session"
	EventCue          EventType = "cue"
	EventTimerExpired EventType = "timerExpired"
	EventTheme        EventType = "theme"
	EventConfig       EventType = "config"
	EventGrid         EventType = "grid"
	EventScoreboard   EventType = "scoreboard"
	EventReload       EventType = "reload"
)

// Event is one update pushed to subscribers.
type Event struct {
	Type    EventType
	Payload any
}

// CuePayload tells the presentation layer which effect to synthesize.
type CuePayload struct {
	Effect domain.SoundEffect `json:"effect"`
	Tones  []cue.Tone         `json:"tones"`
}

// GridView is everything the question grid renders.
type GridView struct {
	Branding domain.Branding    `json:"branding"`
	Stats    domain.GridStats   `json:"stats"`
	Groups   []domain.GridGroup `json:"groups"`
	Fonts    domain.FontConfig  `json:"fonts"`
}

// QuestionView is the open question with its round and session state.
type QuestionView struct {
	Question   domain.Question     `json:"question"`
	RoundTitle string              `json:"roundTitle,omitempty"`
	State      domain.SessionState `json:"state"`
}

// PresenterSnapshot is sent to every new subscriber.
type PresenterSnapshot struct {
	Config     domain.AppConfig    `json:"config"`
	Grid       GridView            `json:"grid"`
	Scoreboard domain.Scoreboard   `json:"scoreboard"`
	Theme      theme.Variables     `json:"theme"`
	Session    domain.SessionState `json:"session"`
	Question   *QuestionView       `json:"question,omitempty"`
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithLogger(log *zap.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

// WithPlayer routes cues to player instead of broadcasting them as events.
func WithPlayer(player cue.Player) Option {
	return func(s *QuizService) { s.player = player }
}

// WithThemeTarget writes applied theme variables into target.
func WithThemeTarget(target theme.Target) Option {
	return func(s *QuizService) { s.themeTarget = target }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithTicker replaces the one-second countdown ticker.
func WithTicker(fn TickerFunc) Option {
	return func(s *QuizService) { s.ticker = fn }
}

// QuizService is the single store every view talks to.
type QuizService struct {
	Config    *ConfigModel
	Questions *QuestionBank
	Progress  *ProgressTracker
	Teams     *TeamLedger
	Session   *SessionController

	store       KeyValueStore
	log         *zap.Logger
	now         func() time.Time
	ticker      TickerFunc
	player      cue.Player
	themeTarget theme.Target
	gate        *cue.Gate
	theme       *theme.Applier

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewQuizService(store KeyValueStore, opts ...Option) *QuizService {
	s := &QuizService{
		store:       store,
		now:         time.Now,
		subscribers: make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.player == nil {
		s.player = cue.PlayerFunc(s.broadcastCue)
	}
	if s.themeTarget == nil {
		s.themeTarget = theme.NewVariableSet()
	}

	defaults := domain.DefaultConfig()
	s.gate = cue.NewGate(s.player, defaults.Sounds)
	s.theme = theme.NewApplier(s.themeTarget)
	s.Config = NewConfigModel(store, s.gate, s.theme, s.log)
	s.Questions = NewQuestionBank(store, s.log)
	s.Progress = NewProgressTracker(store, s.log)
	s.Teams = newTeamLedgerWithClock(store, s.log, s.now)
	s.Session = NewSessionController(s.Config.Timer, s.ticker, s.onTransition)
	return s
}

// Load reads every record from the store. Unreadable records fall back to defaults.
func (s *QuizService) Load(ctx context.Context) {
	s.Config.Load(ctx)
	s.Questions.Load(ctx)
	s.Progress.Load(ctx)
	s.Teams.Load(ctx)
}

// Shutdown cancels the countdown of the open question.
func (s *QuizService) Shutdown() {
	s.Session.Stop()
}

// Gate exposes the sound gate.
func (s *QuizService) Gate() *cue.Gate { return s.gate }

// Theme returns the variables of the applied theme.
func (s *QuizService) Theme() theme.Variables { return s.theme.Current() }

// UpdateConfig merges patch into the config and notifies subscribers.
func (s *QuizService) UpdateConfig(ctx context.Context, patch ConfigPatch) (domain.AppConfig, error) {
	cfg, err := s.Config.Update(ctx, patch)
	return s.configChanged(cfg, err, patch.Theme != nil)
}

func (s *QuizService) SetBranding(ctx context.Context, b domain.Branding) (domain.AppConfig, error) {
	cfg, err := s.Config.SetBranding(ctx, b)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) SetRounds(ctx context.Context, enable bool, rounds []domain.Round) (domain.AppConfig, error) {
	cfg, err := s.Config.SetRounds(ctx, enable, rounds)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) SetTimerConfig(ctx context.Context, t domain.TimerConfig) (domain.AppConfig, error) {
	cfg, err := s.Config.SetTimerConfig(ctx, t)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) SetScoringConfig(ctx context.Context, sc domain.ScoringConfig) (domain.AppConfig, error) {
	cfg, err := s.Config.SetScoringConfig(ctx, sc)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) SetThemeConfig(ctx context.Context, t domain.ThemeConfig) (domain.AppConfig, error) {
	cfg, err := s.Config.SetThemeConfig(ctx, t)
	return s.configChanged(cfg, err, true)
}

func (s *QuizService) SetSoundConfig(ctx context.Context, sc domain.SoundConfig) (domain.AppConfig, error) {
	cfg, err := s.Config.SetSoundConfig(ctx, sc)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) SetFontConfig(ctx context.Context, f domain.FontConfig) (domain.AppConfig, error) {
	cfg, err := s.Config.SetFontConfig(ctx, f)
	return s.configChanged(cfg, err, false)
}

func (s *QuizService) configChanged(cfg domain.AppConfig, err error, themeChanged bool) (domain.AppConfig, error) {
	if err != nil {
		return domain.AppConfig{}, err
	}
	s.broadcast(Event{Type: EventConfig, Payload: cfg})
	if themeChanged {
		s.broadcast(Event{Type: EventTheme, Payload: s.theme.Current()})
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return cfg, nil
}

// AddQuestion stores draft under the next free id (see QuestionBank.Add) and refreshes the grid.
func (s *QuizService) AddQuestion(ctx context.Context, draft domain.QuestionDraft, specificID *int) (domain.Question, error) {
	q, err := s.Questions.Add(ctx, draft, specificID)
	if err != nil {
		return domain.Question{}, err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return q, nil
}

// EditQuestion replaces oldID with q; ErrIDTaken leaves the bank unchanged.
func (s *QuizService) EditQuestion(ctx context.Context, oldID int, q domain.Question) error {
	if err := s.Questions.Edit(ctx, oldID, q); err != nil {
		return err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, q domain.Question) error {
	if err := s.Questions.Update(ctx, q); err != nil {
		return err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id int) error {
	if err := s.Questions.Delete(ctx, id); err != nil {
		return err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return nil
}

// Reload re-reads every record from the store, picking up writes made by another process
// such as the CLI. The open question, if any, stays open.
func (s *QuizService) Reload(ctx context.Context) {
	s.Load(ctx)
	s.log.Info("state reloaded from store")
	s.broadcast(Event{Type: EventReload, Payload: s.presenterSnapshot()})
}

// SetSystemDark records the system color preference; auto themes follow it.
func (s *QuizService) SetSystemDark(dark bool) {
	if vars, reapplied := s.theme.SetSystemDark(dark); reapplied {
		s.broadcast(Event{Type: EventTheme, Payload: vars})
	}
}

// PlayCue forwards a presentation-layer cue through the sound gate.
func (s *QuizService) PlayCue(effect domain.SoundEffect) {
	s.gate.Play(effect)
}

// Grid builds the grid view from the current questions, rounds and progress.
func (s *QuizService) Grid() GridView {
	cfg := s.Config.Config()
	questions := s.Questions.All()
	return GridView{
		Branding: domain.Branding{AppName: cfg.AppName, CompanyName: cfg.CompanyName},
		Stats:    s.Progress.Stats(len(questions)),
		Groups:   domain.GroupTiles(questions, s.Progress.IsVisited, cfg.Rounds, cfg.EnableRounds),
		Fonts:    cfg.Fonts,
	}
}

// OpenQuestion shows id, marking it visited. A visited question needs override.
func (s *QuizService) OpenQuestion(ctx context.Context, id int, override bool) (QuestionView, error) {
	q, ok := s.Questions.Get(id)
	if !ok {
		return QuestionView{}, fmt.Errorf("question %d: %w", id, domain.ErrQuestionNotFound)
	}
	visited := s.Progress.IsVisited(id)
	if visited && !override {
		return QuestionView{}, fmt.Errorf("question %d: %w", id, domain.ErrQuestionVisited)
	}
	if err := s.Progress.MarkVisited(ctx, id); err != nil {
		return QuestionView{}, err
	}

	t, err := s.Session.Dispatch(Action{Kind: ActionOpen, QuestionID: id, Override: visited})
	if err != nil {
		return QuestionView{}, err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return s.questionView(q, t.State), nil
}

// CurrentQuestion returns the open question, if any.
func (s *QuizService) CurrentQuestion() (QuestionView, bool) {
	state := s.Session.State()
	if !state.Open {
		return QuestionView{}, false
	}
	q, ok := s.Questions.Get(state.QuestionID)
	if !ok {
		return QuestionView{}, false
	}
	return s.questionView(q, state), true
}

func (s *QuizService) questionView(q domain.Question, state domain.SessionState) QuestionView {
	cfg := s.Config.Config()
	view := QuestionView{Question: q, State: state}
	if r, ok := s.Questions.FindRoundFor(q.ID, cfg.Rounds, cfg.EnableRounds); ok {
		view.RoundTitle = r.Title
	}
	return view
}

// Act applies a session command. Open is routed through OpenQuestion.
func (s *QuizService) Act(ctx context.Context, a Action) (domain.SessionState, error) {
	if a.Kind == ActionOpen {
		view, err := s.OpenQuestion(ctx, a.QuestionID, a.Override)
		return view.State, err
	}
	t, err := s.Session.Dispatch(a)
	return t.State, err
}

// CloseQuestion returns to the grid.
func (s *QuizService) CloseQuestion() error {
	_, err := s.Session.Dispatch(Action{Kind: ActionClose})
	return err
}

// ResetProgress clears every visited mark once c confirms.
func (s *QuizService) ResetProgress(ctx context.Context, c Confirmer) error {
	if err := s.Progress.Reset(ctx, c); err != nil {
		return err
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return nil
}

func (s *QuizService) AddTeam(ctx context.Context, name string) (domain.Team, error) {
	team, err := s.Teams.AddTeam(ctx, name)
	if err != nil {
		return domain.Team{}, err
	}
	s.broadcastScoreboard()
	return team, nil
}

func (s *QuizService) DeleteTeam(ctx context.Context, id string) error {
	if err := s.Teams.DeleteTeam(ctx, id); err != nil {
		return err
	}
	s.broadcastScoreboard()
	return nil
}

func (s *QuizService) UpdateScore(ctx context.Context, id string, delta int) (domain.Team, error) {
	team, err := s.Teams.UpdateScore(ctx, id, delta)
	if err != nil {
		return domain.Team{}, err
	}
	s.broadcastScoreboard()
	return team, nil
}

func (s *QuizService) SetActiveTeam(ctx context.Context, id string) error {
	if err := s.Teams.SetActiveTeam(ctx, id); err != nil {
		return err
	}
	s.broadcastScoreboard()
	return nil
}

// QuickScore applies the configured delta for kind to the active team.
func (s *QuizService) QuickScore(ctx context.Context, kind ScoreKind) (domain.Team, error) {
	delta, err := kind.Delta(s.Config.Config().Scoring)
	if err != nil {
		return domain.Team{}, err
	}
	team, err := s.Teams.ScoreActive(ctx, delta)
	if err != nil {
		return domain.Team{}, err
	}
	s.broadcastScoreboard()
	return team, nil
}

// Export captures config and questions as a backup document.
func (s *QuizService) Export() domain.Snapshot {
	return newSnapshot(s.Config.Config(), s.Questions.All(), s.now())
}

// ExportJSON renders Export as indented JSON.
func (s *QuizService) ExportJSON() ([]byte, error) {
	return encodeSnapshot(s.Export())
}

// BackupFileName names a backup taken now.
func (s *QuizService) BackupFileName() string {
	return BackupFileName(s.now())
}

// Import replaces config and questions from a backup document. Anything other than a
// document with both config and questions fails with ErrInvalidSnapshot and changes nothing.
func (s *QuizService) Import(ctx context.Context, data []byte) error {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	prev := s.Config.Config()
	if err := s.Config.Replace(ctx, snap.Config); err != nil {
		return err
	}
	if err := s.Questions.Replace(ctx, snap.Questions); err != nil {
		// put the old config back so config and questions stay from the same backup
		if rerr := s.Config.Replace(ctx, prev); rerr != nil {
			s.log.Error("restore config after failed import", zap.Error(rerr))
		}
		return err
	}
	s.log.Info("backup imported", zap.Int("questions", len(snap.Questions)), zap.String("version", snap.Version))
	s.broadcast(Event{Type: EventReload, Payload: s.presenterSnapshot()})
	return nil
}

// Reset restores the bundled config and questions once c confirms, clearing their
// records and reloading every component.
func (s *QuizService) Reset(ctx context.Context, c Confirmer) error {
	if err := confirm(c, "Reset configuration and questions to defaults?"); err != nil {
		return err
	}
	for _, key := range []string{domain.KeyConfig, domain.KeyQuestions} {
		if err := deleteKey(ctx, s.store, key); err != nil {
			return err
		}
	}
	s.Session.Stop()
	s.Load(ctx)
	s.log.Info("configuration and questions reset to defaults")
	s.broadcast(Event{Type: EventReload, Payload: s.presenterSnapshot()})
	return nil
}

// ExportSheet writes the questions as an XLSX workbook.
func (s *QuizService) ExportSheet() ([]byte, error) {
	return sheet.Export(s.Questions.All())
}

// ImportSheet adds every row of an XLSX workbook, using the ID column as the requested id.
// Rows are parsed before anything is added.
func (s *QuizService) ImportSheet(ctx context.Context, r io.Reader) ([]domain.Question, error) {
	rows, err := sheet.Read(r)
	if err != nil {
		return nil, err
	}
	added := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q, err := s.Questions.Add(ctx, row.Draft, row.ID)
		if err != nil {
			return added, fmt.Errorf("row %d: %w", row.Line, err)
		}
		added = append(added, q)
	}
	s.broadcast(Event{Type: EventGrid, Payload: s.Grid()})
	return added, nil
}

// AttachMedia compresses data and stores it on question id as a data URL.
// A decode failure leaves the question untouched.
func (s *QuizService) AttachMedia(ctx context.Context, id int, kind domain.MediaType, data []byte) (domain.Question, error) {
	q, ok := s.Questions.Get(id)
	if !ok {
		return domain.Question{}, fmt.Errorf("question %d: %w", id, domain.ErrQuestionNotFound)
	}
	url, err := media.Compress(kind, data)
	if err != nil {
		return domain.Question{}, err
	}
	q.MediaType, q.MediaURL = kind, url
	if err := s.Questions.Update(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// Subscribe returns a channel that receives presenter events, starting with a snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context) (<-chan Event, func()) {
	ch := make(chan Event, 32)
	initial := Event{Type: EventSnapshot, Payload: s.presenterSnapshot()}

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- initial
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// PresenterState is the full view a freshly connected presenter needs.
func (s *QuizService) PresenterState() PresenterSnapshot {
	return s.presenterSnapshot()
}

func (s *QuizService) presenterSnapshot() PresenterSnapshot {
	snap := PresenterSnapshot{
		Config:     s.Config.Config(),
		Grid:       s.Grid(),
		Scoreboard: s.Teams.Scoreboard(),
		Theme:      s.theme.Current(),
		Session:    s.Session.State(),
	}
	if view, ok := s.CurrentQuestion(); ok {
		snap.Question = &view
	}
	return snap
}

// onTransition runs under the session lock; it must not call back into the controller.
func (s *QuizService) onTransition(t Transition) {
	for _, effect := range t.Cues {
		s.gate.Play(effect)
	}
	s.broadcast(Event{Type: EventSession, Payload: t.State})
	if t.Expired {
		s.log.Debug("timer expired", zap.Int("question", t.State.QuestionID))
		s.broadcast(Event{Type: EventTimerExpired, Payload: t.State})
	}
}

func (s *QuizService) broadcastCue(effect domain.SoundEffect) {
	s.broadcast(Event{Type: EventCue, Payload: CuePayload{Effect: effect, Tones: cue.Tones(effect)}})
}

func (s *QuizService) broadcastScoreboard() {
	s.broadcast(Event{Type: EventScoreboard, Payload: s.Teams.Scoreboard()})
}

func (s *QuizService) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
