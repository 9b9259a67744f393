package app

import (
	"context"
	"sync"

	"quizmaster/internal/cue"
	"quizmaster/internal/domain"
	"quizmaster/internal/theme"

	"go.uber.org/zap"
)

// ConfigPatch replaces the top-level groups that are set. Nested groups are taken whole.
type ConfigPatch struct {
	AppName      *string               `json:"appName,omitempty"`
	CompanyName  *string               `json:"companyName,omitempty"`
	EnableRounds *bool                 `json:"enableRounds,omitempty"`
	Rounds       *[]domain.Round       `json:"rounds,omitempty"`
	Timer        *domain.TimerConfig   `json:"timer,omitempty"`
	Scoring      *domain.ScoringConfig `json:"scoring,omitempty"`
	Theme        *domain.ThemeConfig   `json:"theme,omitempty"`
	Sounds       *domain.SoundConfig   `json:"sounds,omitempty"`
	Fonts        *domain.FontConfig    `json:"fonts,omitempty"`
}

func (p ConfigPatch) apply(cfg domain.AppConfig) domain.AppConfig {
	if p.AppName != nil {
		cfg.AppName = *p.AppName
	}
	if p.CompanyName != nil {
		cfg.CompanyName = *p.CompanyName
	}
	if p.EnableRounds != nil {
		cfg.EnableRounds = *p.EnableRounds
	}
	if p.Rounds != nil {
		cfg.Rounds = append([]domain.Round(nil), (*p.Rounds)...)
	}
	if p.Timer != nil {
		cfg.Timer = *p.Timer
	}
	if p.Scoring != nil {
		cfg.Scoring = *p.Scoring
	}
	if p.Theme != nil {
		cfg.Theme = *p.Theme
	}
	if p.Sounds != nil {
		cfg.Sounds = *p.Sounds
	}
	if p.Fonts != nil {
		cfg.Fonts = *p.Fonts
	}
	return cfg
}

// ConfigModel owns the persisted AppConfig and keeps the sound gate and theme in step with it.
type ConfigModel struct {
	store KeyValueStore
	log   *zap.Logger
	gate  *cue.Gate
	theme *theme.Applier

	mu  sync.RWMutex
	cfg domain.AppConfig
}

func NewConfigModel(store KeyValueStore, gate *cue.Gate, applier *theme.Applier, log *zap.Logger) *ConfigModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigModel{store: store, log: log, gate: gate, theme: applier, cfg: domain.DefaultConfig()}
}

// Load reads the persisted config. Absent or unreadable records fall back to the bundled default.
func (m *ConfigModel) Load(ctx context.Context) domain.AppConfig {
	cfg := domain.DefaultConfig()
	var stored domain.AppConfig
	found, err := loadJSON(ctx, m.store, domain.KeyConfig, &stored)
	switch {
	case err != nil:
		m.log.Warn("config unreadable, using defaults", zap.String("key", domain.KeyConfig), zap.Error(err))
	case found:
		cfg = stored
	}

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	m.reseed(cfg, true, true)
	return cloneConfig(cfg)
}

func (m *ConfigModel) Config() domain.AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneConfig(m.cfg)
}

func (m *ConfigModel) Timer() domain.TimerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Timer
}

// Update merges patch into the current config and persists the result.
func (m *ConfigModel) Update(ctx context.Context, patch ConfigPatch) (domain.AppConfig, error) {
	m.mu.Lock()
	next := patch.apply(cloneConfig(m.cfg))
	if err := saveJSON(ctx, m.store, domain.KeyConfig, next); err != nil {
		m.mu.Unlock()
		return domain.AppConfig{}, err
	}
	m.cfg = next
	m.mu.Unlock()

	m.reseed(next, patch.Sounds != nil, patch.Theme != nil)
	return cloneConfig(next), nil
}

// Replace swaps the whole config, as import does.
func (m *ConfigModel) Replace(ctx context.Context, cfg domain.AppConfig) error {
	if err := saveJSON(ctx, m.store, domain.KeyConfig, cfg); err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cloneConfig(cfg)
	m.mu.Unlock()
	m.reseed(cfg, true, true)
	return nil
}

func (m *ConfigModel) SetBranding(ctx context.Context, b domain.Branding) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{AppName: &b.AppName, CompanyName: &b.CompanyName})
}

// SetRounds stores the round layout. Ranges are not validated; inverted ranges match nothing.
func (m *ConfigModel) SetRounds(ctx context.Context, enable bool, rounds []domain.Round) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{EnableRounds: &enable, Rounds: &rounds})
}

func (m *ConfigModel) SetTimerConfig(ctx context.Context, t domain.TimerConfig) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{Timer: &t})
}

func (m *ConfigModel) SetScoringConfig(ctx context.Context, s domain.ScoringConfig) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{Scoring: &s})
}

func (m *ConfigModel) SetThemeConfig(ctx context.Context, t domain.ThemeConfig) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{Theme: &t})
}

func (m *ConfigModel) SetSoundConfig(ctx context.Context, s domain.SoundConfig) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{Sounds: &s})
}

func (m *ConfigModel) SetFontConfig(ctx context.Context, f domain.FontConfig) (domain.AppConfig, error) {
	return m.Update(ctx, ConfigPatch{Fonts: &f})
}

func (m *ConfigModel) reseed(cfg domain.AppConfig, sounds, th bool) {
	if sounds && m.gate != nil {
		m.gate.SetPreferences(cfg.Sounds)
	}
	if th && m.theme != nil {
		m.theme.Apply(cfg.Theme)
	}
}

func cloneConfig(cfg domain.AppConfig) domain.AppConfig {
	cfg.Rounds = append([]domain.Round(nil), cfg.Rounds...)
	return cfg
}
