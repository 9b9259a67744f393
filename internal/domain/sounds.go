package domain

// SoundEffect names an audio cue category.
type SoundEffect string

const (
	SoundClick      SoundEffect = "click"
	SoundSelect     SoundEffect = "select"
	SoundReveal     SoundEffect = "reveal"
	SoundBack       SoundEffect = "back"
	SoundTimerTick  SoundEffect = "timerTick"
	SoundTimerEnd   SoundEffect = "timerEnd"
	SoundSuccess    SoundEffect = "success"
	SoundError      SoundEffect = "error"
	SoundWarning    SoundEffect = "warning"
	SoundPass       SoundEffect = "pass"
	SoundFullscreen SoundEffect = "fullscreen"
)

// SoundEffects lists every effect category in declaration order.
var SoundEffects = []SoundEffect{
	SoundClick, SoundSelect, SoundReveal, SoundBack, SoundTimerTick, SoundTimerEnd,
	SoundSuccess, SoundError, SoundWarning, SoundPass, SoundFullscreen,
}

// Allows reports whether effect may play: the master switch and the effect's own flag
// must both be on. Unknown effects never play.
func (s SoundConfig) Allows(effect SoundEffect) bool {
	if !s.MasterEnabled {
		return false
	}
	switch effect {
	case SoundClick:
		return s.Click
	case SoundSelect:
		return s.Select
	case SoundReveal:
		return s.Reveal
	case SoundBack:
		return s.Back
	case SoundTimerTick:
		return s.TimerTick
	case SoundTimerEnd:
		return s.TimerEnd
	case SoundSuccess:
		return s.Success
	case SoundError:
		return s.Error
	case SoundWarning:
		return s.Warning
	case SoundPass:
		return s.Pass
	case SoundFullscreen:
		return s.Fullscreen
	}
	return false
}
