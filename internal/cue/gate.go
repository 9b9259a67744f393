// Package cue gates fire-and-forget audio cues behind the configured sound preferences.
package cue

import (
	"sync"

	"quizmaster/internal/domain"
)

// Player renders an audio cue. Implementations must not block the caller.
type Player interface {
	Play(effect domain.SoundEffect)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(effect domain.SoundEffect)

func (f PlayerFunc) Play(effect domain.SoundEffect) { f(effect) }

// Discard drops every cue.
var Discard Player = PlayerFunc(func(domain.SoundEffect) {})

// Gate caches the sound preferences and only forwards allowed cues to the player.
type Gate struct {
	mu     sync.RWMutex
	prefs  domain.SoundConfig
	player Player
}

func NewGate(player Player, prefs domain.SoundConfig) *Gate {
	if player == nil {
		player = Discard
	}
	return &Gate{player: player, prefs: prefs}
}

// SetPreferences replaces the cached preferences wholesale.
func (g *Gate) SetPreferences(prefs domain.SoundConfig) {
	g.mu.Lock()
	g.prefs = prefs
	g.mu.Unlock()
}

func (g *Gate) Preferences() domain.SoundConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.prefs
}

// ShouldPlay reports whether effect passes the master switch and its own flag.
func (g *Gate) ShouldPlay(effect domain.SoundEffect) bool {
	return g.Preferences().Allows(effect)
}

// SetPlayer swaps the collaborator that renders cues.
func (g *Gate) SetPlayer(player Player) {
	if player == nil {
		player = Discard
	}
	g.mu.Lock()
	g.player = player
	g.mu.Unlock()
}

// Play forwards effect to the player when the preferences allow it.
func (g *Gate) Play(effect domain.SoundEffect) {
	g.mu.RLock()
	allowed := g.prefs.Allows(effect)
	player := g.player
	g.mu.RUnlock()
	if !allowed {
		return
	}
	player.Play(effect)
}
