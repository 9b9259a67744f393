package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"reflect"
	"strings"
	"testing"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/sheet"
)

func TestImportReplacesBothCollections(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	cfg, _ := json.Marshal(domain.DefaultConfig())
	doc := `{"config":` + string(cfg) + `,"questions":[{"id":1,"text":"x","answer":"y"}]}`
	if err := svc.Import(ctx, []byte(doc)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := svc.Questions.All(); len(got) != 1 || got[0].Text != "x" {
		t.Fatalf("expected questions replaced, got %+v", got)
	}
	raw, _ := store.Get(ctx, domain.KeyQuestions)
	if string(raw) != `[{"id":1,"text":"x","answer":"y"}]` {
		t.Fatalf("expected persisted replacement, got %s", raw)
	}
}

func TestImportWithoutQuestionsChangesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	before := svc.Questions.All()
	beforeCfg := svc.Config.Config()

	for _, doc := range []string{
		`{"config":{"appName":"Other"}}`,
		`{"questions":[]}`,
		`{"config":null,"questions":[]}`,
		`not json at all`,
		`{"config":{"appName":"x"},"questions":{"id":1}}`,
	} {
		if err := svc.Import(ctx, []byte(doc)); !errors.Is(err, domain.ErrInvalidSnapshot) {
			t.Fatalf("%s: expected ErrInvalidSnapshot, got %v", doc, err)
		}
	}
	if !reflect.DeepEqual(before, svc.Questions.All()) || !reflect.DeepEqual(beforeCfg, svc.Config.Config()) {
		t.Fatalf("failed import must leave state untouched")
	}
}

// rejectingStore fails every write to one key.
type rejectingStore struct {
	*memory.Store
	key string
}

func (s rejectingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == s.key {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func TestImportKeepsOldConfigWhenQuestionsSaveFails(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	svc := app.NewQuizService(rejectingStore{Store: backing, key: domain.KeyQuestions}, app.WithTicker(stillTicker))
	svc.Load(ctx)
	t.Cleanup(svc.Shutdown)

	imported := domain.DefaultConfig()
	imported.AppName = "Imported Show"
	cfg, _ := json.Marshal(imported)
	doc := `{"config":` + string(cfg) + `,"questions":[{"id":1,"text":"x","answer":"y"}]}`
	if err := svc.Import(ctx, []byte(doc)); err == nil {
		t.Fatalf("expected import to fail when questions cannot be saved")
	}

	if got := svc.Config.Config().AppName; got != domain.DefaultConfig().AppName {
		t.Fatalf("expected in-memory config restored, got app name %q", got)
	}
	raw, err := backing.Get(ctx, domain.KeyConfig)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	var stored domain.AppConfig
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if stored.AppName != domain.DefaultConfig().AppName {
		t.Fatalf("expected persisted config restored, got app name %q", stored.AppName)
	}
	if got := svc.Questions.Len(); got != len(domain.DefaultQuestions()) {
		t.Fatalf("expected questions untouched, got %d", got)
	}
}

func TestExportStampsVersionAndTime(t *testing.T) {
	svc, _ := newTestService(t)
	data, err := svc.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if snap.Version != app.SnapshotVersion || snap.Timestamp != "2026-03-14T09:26:53Z" {
		t.Fatalf("unexpected stamp %s %s", snap.Version, snap.Timestamp)
	}
	if len(snap.Questions) != len(domain.DefaultQuestions()) {
		t.Fatalf("expected bundled questions in export")
	}
	if name := svc.BackupFileName(); name != "quizmaster_backup_2026-03-14.json" {
		t.Fatalf("unexpected backup name %s", name)
	}

	other, _ := newTestService(t)
	if err := other.Import(context.Background(), data); err != nil {
		t.Fatalf("exported backup must import: %v", err)
	}
}

func TestResetRestoresDefaultsAfterConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	svc.Questions.Delete(ctx, 1)
	svc.Config.SetBranding(ctx, domain.Branding{AppName: "Custom"})
	team, _ := svc.AddTeam(ctx, "Owls")

	if err := svc.Reset(ctx, app.ConfirmFunc(func(string) bool { return false })); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if svc.Config.Config().AppName != "Custom" {
		t.Fatalf("declined reset must not change config")
	}

	if err := svc.Reset(ctx, app.AlwaysConfirm); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if svc.Config.Config().AppName != "Quiz Master" || svc.Questions.Len() != len(domain.DefaultQuestions()) {
		t.Fatalf("expected defaults after reset")
	}
	for _, key := range []string{domain.KeyConfig, domain.KeyQuestions} {
		if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrKeyNotFound) {
			t.Fatalf("expected %s cleared, got %v", key, err)
		}
	}
	if teams := svc.Teams.Teams(); len(teams) != 1 || teams[0].ID != team.ID {
		t.Fatalf("reset must keep teams, got %+v", teams)
	}
}

func TestOpenQuestionBlocksVisitedWithoutOverride(t *testing.T) {
	ctx := context.Background()
	player := &recordingPlayer{}
	svc, _ := newTestService(t, app.WithPlayer(player))

	view, err := svc.OpenQuestion(ctx, 21, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if view.RoundTitle != "Round 2: General Knowledge" || view.State.SecondsRemaining != 30 {
		t.Fatalf("unexpected view %+v", view)
	}
	if !svc.Progress.IsVisited(21) {
		t.Fatalf("opening must mark visited")
	}
	if err := svc.CloseQuestion(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.OpenQuestion(ctx, 21, false); !errors.Is(err, domain.ErrQuestionVisited) {
		t.Fatalf("expected ErrQuestionVisited, got %v", err)
	}
	if _, err := svc.OpenQuestion(ctx, 21, true); err != nil {
		t.Fatalf("override open: %v", err)
	}
	if _, err := svc.OpenQuestion(ctx, 999, true); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}

	want := []domain.SoundEffect{domain.SoundSelect, domain.SoundBack, domain.SoundClick}
	if got := player.Played(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected cues %v, got %v", want, got)
	}
}

func TestActRequiresOpenQuestion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.Act(ctx, app.Action{Kind: app.ActionPass}); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}

	if _, err := svc.Act(ctx, app.Action{Kind: app.ActionOpen, QuestionID: 2}); err != nil {
		t.Fatalf("open via act: %v", err)
	}
	state, err := svc.Act(ctx, app.Action{Kind: app.ActionPass})
	if err != nil || state.SecondsRemaining != 15 || !state.TimerRunning {
		t.Fatalf("unexpected pass state %+v (%v)", state, err)
	}
	if view, ok := svc.CurrentQuestion(); !ok || view.Question.ID != 2 {
		t.Fatalf("expected question 2 open, got %+v", view)
	}
}

func TestMutedSoundsNeverReachPlayer(t *testing.T) {
	ctx := context.Background()
	player := &recordingPlayer{}
	svc, _ := newTestService(t, app.WithPlayer(player))

	sounds := svc.Config.Config().Sounds
	sounds.MasterEnabled = false
	if _, err := svc.UpdateConfig(ctx, app.ConfigPatch{Sounds: &sounds}); err != nil {
		t.Fatalf("update: %v", err)
	}

	svc.OpenQuestion(ctx, 1, false)
	svc.Act(ctx, app.Action{Kind: app.ActionToggleAnswer})
	svc.PlayCue(domain.SoundReveal)
	if got := player.Played(); len(got) != 0 {
		t.Fatalf("expected silence, got %v", got)
	}
}

func TestQuickScoreTargetsActiveTeam(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.QuickScore(ctx, app.ScoreCorrect); !errors.Is(err, domain.ErrNoActiveTeam) {
		t.Fatalf("expected ErrNoActiveTeam, got %v", err)
	}

	team, _ := svc.AddTeam(ctx, "Owls")
	if err := svc.SetActiveTeam(ctx, team.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	svc.QuickScore(ctx, app.ScoreCorrect)
	svc.QuickScore(ctx, app.ScoreBonus)
	got, err := svc.QuickScore(ctx, app.ScorePenalty)
	if err != nil || got.Score != 10 {
		t.Fatalf("expected 10+5-5 = 10, got %+v (%v)", got, err)
	}
}

func TestSubscribeReceivesSnapshotThenUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	ch, cancel := svc.Subscribe(ctx)
	defer cancel()

	first := <-ch
	snap, ok := first.Payload.(app.PresenterSnapshot)
	if first.Type != app.EventSnapshot || !ok || snap.Grid.Stats.Total != len(domain.DefaultQuestions()) {
		t.Fatalf("expected initial snapshot, got %+v", first)
	}

	svc.OpenQuestion(ctx, 3, false)
	seen := map[app.EventType]bool{}
	timeout := time.After(time.Second)
	for !(seen[app.EventCue] && seen[app.EventSession] && seen[app.EventGrid]) {
		select {
		case ev := <-ch:
			seen[ev.Type] = true
			if ev.Type == app.EventCue {
				cue := ev.Payload.(app.CuePayload)
				if cue.Effect != domain.SoundSelect || len(cue.Tones) == 0 {
					t.Fatalf("unexpected cue %+v", cue)
				}
			}
		case <-timeout:
			t.Fatalf("missing events, saw %v", seen)
		}
	}
}

func TestGridGroupsAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.Questions.Add(ctx, domain.QuestionDraft{Text: "stray"}, intp(100))
	svc.OpenQuestion(ctx, 1, false)

	grid := svc.Grid()
	if grid.Stats != (domain.GridStats{Total: 19, Completed: 1, Remaining: 18}) {
		t.Fatalf("unexpected stats %+v", grid.Stats)
	}
	titles := make([]string, len(grid.Groups))
	for i, g := range grid.Groups {
		titles[i] = g.Title
	}
	want := []string{"Round 1: Rapid Fire", "Round 2: General Knowledge", "Round 3: Grand Finale", domain.OtherRoundTitle}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("expected groups %v, got %v", want, titles)
	}
	if !grid.Groups[0].Tiles[0].Visited || grid.Groups[0].Tiles[1].Visited {
		t.Fatalf("expected only question 1 visited")
	}
}

func TestImportSheetAddsRowsUnderFreeIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	data, err := sheet.Export([]domain.Question{
		{ID: 1, Text: "Collides", Answer: "a"},
		{ID: 77, Text: "Fresh", Answer: "b"},
	})
	if err != nil {
		t.Fatalf("export sheet: %v", err)
	}

	added, err := svc.ImportSheet(ctx, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("import sheet: %v", err)
	}
	if got := questionIDs(added); !reflect.DeepEqual(got, []int{11, 77}) {
		t.Fatalf("expected id 1 to move up to 11, got %v", got)
	}

	exported, err := svc.ExportSheet()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := sheet.Read(bytes.NewReader(exported))
	if err != nil || len(rows) != svc.Questions.Len() {
		t.Fatalf("expected %d rows, got %d (%v)", svc.Questions.Len(), len(rows), err)
	}
}

func TestAttachMediaStoresDataURL(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	q, err := svc.AttachMedia(ctx, 2, domain.MediaImage, img.Bytes())
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if q.MediaType != domain.MediaImage || !strings.HasPrefix(q.MediaURL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected attachment %s %.30s", q.MediaType, q.MediaURL)
	}

	if _, err := svc.AttachMedia(ctx, 3, domain.MediaAudio, []byte("nope")); !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
	if q, _ := svc.Questions.Get(3); q.MediaURL != "" {
		t.Fatalf("failed attachment must not touch the question")
	}
}

func TestSystemDarkReappliesAutoTheme(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.UpdateConfig(ctx, app.ConfigPatch{Theme: &domain.ThemeConfig{Mode: domain.ThemeAuto, ColorScheme: domain.SchemeBlue}})
	if svc.Theme().Mode != domain.ThemeLight {
		t.Fatalf("auto theme should start light, got %s", svc.Theme().Mode)
	}
	svc.SetSystemDark(true)
	if svc.Theme().Mode != domain.ThemeDark {
		t.Fatalf("auto theme should follow system dark")
	}
}
