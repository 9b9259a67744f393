package app

import (
	"math"
	"sync"
	"time"

	"quizmaster/internal/domain"
)

const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0

	// AdjustStep is the size of one manual timer nudge, in seconds.
	AdjustStep = 10
)

// ActionKind names a session command.
type ActionKind string

const (
	ActionOpen         ActionKind = "open"
	ActionClose        ActionKind = "close"
	ActionToggleAnswer ActionKind = "toggleAnswer"
	ActionToggleTimer  ActionKind = "toggleTimer"
	ActionStartTimer   ActionKind = "startTimer"
	ActionPauseTimer   ActionKind = "pauseTimer"
	ActionResetTimer   ActionKind = "resetTimer"
	ActionPass         ActionKind = "pass"
	ActionAdjust       ActionKind = "adjust"
	ActionTick         ActionKind = "tick"
	ActionZoomIn       ActionKind = "zoomIn"
	ActionZoomOut      ActionKind = "zoomOut"
	ActionZoomReset    ActionKind = "zoomReset"
)

// Action is one session command. QuestionID and Override are read by open, Delta by adjust.
// Override marks the re-opening of a visited question.
type Action struct {
	Kind       ActionKind `json:"kind"`
	QuestionID int        `json:"questionId,omitempty"`
	Delta      int        `json:"delta,omitempty"`
	Override   bool       `json:"override,omitempty"`
}

// Transition is the outcome of one action.
type Transition struct {
	State   domain.SessionState
	Cues    []domain.SoundEffect
	Expired bool
}

// reduce computes the next session state. It is pure; the controller owns scheduling.
func reduce(s domain.SessionState, a Action, timer domain.TimerConfig) Transition {
	var cues []domain.SoundEffect

	switch a.Kind {
	case ActionOpen:
		s = domain.SessionState{
			Open:             true,
			QuestionID:       a.QuestionID,
			SecondsRemaining: timer.DefaultDuration,
			TimerRunning:     timer.AutoStartOnOpen,
			ZoomScale:        DefaultZoom,
		}
		if a.Override {
			cues = append(cues, domain.SoundClick)
		} else {
			cues = append(cues, domain.SoundSelect)
		}
	case ActionClose:
		return Transition{State: domain.SessionState{}, Cues: []domain.SoundEffect{domain.SoundBack}}
	case ActionToggleAnswer:
		s.AnswerRevealed = !s.AnswerRevealed
		if s.AnswerRevealed {
			s.TimerRunning = false
			cues = append(cues, domain.SoundReveal)
		} else {
			cues = append(cues, domain.SoundClick)
		}
	case ActionToggleTimer:
		s.TimerRunning = !s.TimerRunning
		cues = append(cues, domain.SoundClick)
	case ActionStartTimer:
		s.TimerRunning = true
		cues = append(cues, domain.SoundClick)
	case ActionPauseTimer:
		s.TimerRunning = false
		cues = append(cues, domain.SoundClick)
	case ActionResetTimer:
		s.TimerRunning = false
		s.SecondsRemaining = timer.DefaultDuration
		cues = append(cues, domain.SoundClick)
	case ActionPass:
		s.SecondsRemaining = timer.PassDuration
		s.TimerRunning = timer.AutoStartOnPass
		cues = append(cues, domain.SoundPass)
	case ActionAdjust:
		s.SecondsRemaining += a.Delta
		if s.SecondsRemaining < 0 {
			s.SecondsRemaining = 0
		}
	case ActionTick:
		if s.TimerRunning && s.SecondsRemaining > 0 {
			s.SecondsRemaining--
		}
	case ActionZoomIn:
		s.ZoomScale = clampZoom(s.ZoomScale + ZoomStep)
	case ActionZoomOut:
		s.ZoomScale = clampZoom(s.ZoomScale - ZoomStep)
	case ActionZoomReset:
		s.ZoomScale = DefaultZoom
	}

	t := Transition{State: s, Cues: cues}
	// A running countdown that sits at zero has expired.
	if s.TimerRunning && s.SecondsRemaining <= 0 {
		t.State.TimerRunning = false
		t.State.SecondsRemaining = 0
		t.Expired = true
		t.Cues = append(t.Cues, domain.SoundTimerEnd)
	}
	return t
}

func clampZoom(z float64) float64 {
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// TickerFunc starts a ticker and returns its channel and stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// SessionController holds the state of the open question and drives its countdown.
type SessionController struct {
	timer     func() domain.TimerConfig
	newTicker TickerFunc
	onChange  func(Transition)

	mu         sync.Mutex
	state      domain.SessionState
	generation uint64
	stopTicker func()
}

// NewSessionController builds a controller. timer supplies the live timer settings; onChange
// is called with every transition while the controller lock is held and must not call back in.
func NewSessionController(timer func() domain.TimerConfig, newTicker TickerFunc, onChange func(Transition)) *SessionController {
	if newTicker == nil {
		newTicker = realTicker
	}
	if onChange == nil {
		onChange = func(Transition) {}
	}
	return &SessionController{timer: timer, newTicker: newTicker, onChange: onChange}
}

func (c *SessionController) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a. Every action other than open requires an open question.
func (c *SessionController) Dispatch(a Action) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a.Kind != ActionOpen && !c.state.Open {
		return Transition{}, domain.ErrNoActiveQuestion
	}
	return c.applyLocked(a), nil
}

// Stop closes the open question, if any, without emitting cues, and cancels the countdown.
func (c *SessionController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCountdownLocked()
	c.state = domain.SessionState{}
}

func (c *SessionController) applyLocked(a Action) Transition {
	prev := c.state
	t := reduce(prev, a, c.timer())
	c.state = t.State

	switch {
	case !t.State.TimerRunning:
		c.cancelCountdownLocked()
	case a.Kind == ActionTick:
		// keep the running ticker
	case !prev.TimerRunning, a.Kind == ActionOpen, prev.SecondsRemaining != t.State.SecondsRemaining:
		c.startCountdownLocked()
	}

	c.onChange(t)
	return t
}

func (c *SessionController) startCountdownLocked() {
	c.cancelCountdownLocked()
	ticks, stop := c.newTicker(time.Second)
	done := make(chan struct{})
	gen := c.generation
	c.stopTicker = func() {
		close(done)
		stop()
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				c.tick(gen)
			}
		}
	}()
}

func (c *SessionController) cancelCountdownLocked() {
	c.generation++
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
}

func (c *SessionController) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || !c.state.Open {
		return
	}
	c.applyLocked(Action{Kind: ActionTick})
}
