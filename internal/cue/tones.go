package cue

import "quizmaster/internal/domain"

// Waveform is an oscillator shape understood by the presentation layer's synthesizer.
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
)

// Tone is one oscillator note. Times are in seconds.
type Tone struct {
	Frequency float64  `json:"frequency"`
	Wave      Waveform `json:"wave"`
	Duration  float64  `json:"duration"`
	Delay     float64  `json:"delay,omitempty"`
}

var tones = map[domain.SoundEffect][]Tone{
	domain.SoundClick: {{800, Sine, 0.1, 0}},
	domain.SoundSelect: {
		{400, Sine, 0.15, 0},
		{600, Sine, 0.15, 0.05},
	},
	domain.SoundReveal: {
		{523.25, Triangle, 0.6, 0},
		{659.25, Triangle, 0.6, 0.1},
		{783.99, Triangle, 0.8, 0.2},
	},
	domain.SoundBack: {
		{400, Sine, 0.2, 0},
		{300, Sine, 0.3, 0.1},
	},
	domain.SoundTimerTick: {{1000, Sine, 0.05, 0}},
	domain.SoundTimerEnd: {
		{880, Square, 0.5, 0},
		{880, Square, 0.5, 0.6},
		{880, Square, 0.5, 1.2},
	},
	domain.SoundSuccess: {
		{523.25, Sine, 0.2, 0},
		{659.25, Sine, 0.2, 0.1},
		{783.99, Sine, 0.4, 0.2},
	},
	domain.SoundError: {
		{200, Sawtooth, 0.3, 0},
		{180, Sawtooth, 0.3, 0.15},
	},
	domain.SoundWarning: {
		{600, Sine, 0.15, 0},
		{600, Sine, 0.15, 0.25},
	},
	domain.SoundPass: {
		{800, Sine, 0.1, 0},
		{600, Sine, 0.1, 0.05},
		{400, Sine, 0.1, 0.1},
	},
	domain.SoundFullscreen: {
		{400, Sine, 0.2, 0},
		{600, Sine, 0.3, 0.1},
	},
}

// Tones returns the synthesizer recipe for effect, or nil for an unknown effect.
func Tones(effect domain.SoundEffect) []Tone {
	recipe := tones[effect]
	out := make([]Tone, len(recipe))
	copy(out, recipe)
	return out
}
