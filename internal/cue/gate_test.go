package cue

import (
	"testing"

	"quizmaster/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGateMasterSwitchSilencesEverything(t *testing.T) {
	var played []domain.SoundEffect
	prefs := domain.DefaultConfig().Sounds
	prefs.MasterEnabled = false

	gate := NewGate(PlayerFunc(func(e domain.SoundEffect) { played = append(played, e) }), prefs)
	for _, effect := range domain.SoundEffects {
		assert.False(t, gate.ShouldPlay(effect), effect)
		gate.Play(effect)
	}
	assert.Empty(t, played)
}

func TestGatePerEffectFlags(t *testing.T) {
	var played []domain.SoundEffect
	prefs := domain.DefaultConfig().Sounds
	prefs.Reveal = false

	gate := NewGate(PlayerFunc(func(e domain.SoundEffect) { played = append(played, e) }), prefs)
	gate.Play(domain.SoundReveal)
	gate.Play(domain.SoundPass)
	gate.Play(domain.SoundEffect("unknown"))
	assert.Equal(t, []domain.SoundEffect{domain.SoundPass}, played)

	prefs.Reveal = true
	gate.SetPreferences(prefs)
	gate.Play(domain.SoundReveal)
	assert.Equal(t, []domain.SoundEffect{domain.SoundPass, domain.SoundReveal}, played)
}

func TestEveryEffectHasTones(t *testing.T) {
	for _, effect := range domain.SoundEffects {
		assert.NotEmpty(t, Tones(effect), effect)
	}
	assert.Empty(t, Tones("unknown"))
}
