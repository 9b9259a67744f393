package domain

import "time"

// MediaType tags the optional attachment of a question.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
)

// Round groups an inclusive range of question ids under a title.
type Round struct {
	Title string `json:"title"`
	Range [2]int `json:"range"`
}

// Contains reports whether id falls inside the round's inclusive range.
// An inverted range (start > end) contains nothing.
func (r Round) Contains(id int) bool {
	return id >= r.Range[0] && id <= r.Range[1]
}

// Question is a single tile on the grid.
type Question struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Answer    string    `json:"answer"`
	MediaType MediaType `json:"mediaType,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty"` // URL or data URL
}

// QuestionDraft is a question that has not been assigned an id yet.
type QuestionDraft struct {
	Text      string    `json:"text"`
	Answer    string    `json:"answer"`
	MediaType MediaType `json:"mediaType,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
}

// WithID turns the draft into a question.
func (d QuestionDraft) WithID(id int) Question {
	return Question{
		ID:        id,
		Text:      d.Text,
		Answer:    d.Answer,
		MediaType: d.MediaType,
		MediaURL:  d.MediaURL,
	}
}

// Branding holds the display names shown in the header.
type Branding struct {
	AppName     string `json:"appName"`
	CompanyName string `json:"companyName"`
}

// TimerConfig seeds every question's countdown. Durations are in seconds.
type TimerConfig struct {
	DefaultDuration int  `json:"defaultDuration"`
	PassDuration    int  `json:"passDuration"`
	AutoStartOnOpen bool `json:"autoStartOnOpen"`
	AutoStartOnPass bool `json:"autoStartOnPass"`
}

// ScoringConfig holds the quick-score deltas. Penalty is conventionally <= 0.
type ScoringConfig struct {
	Correct int `json:"correct"`
	Bonus   int `json:"bonus"`
	Penalty int `json:"penalty"`
}

// ThemeMode selects light, dark or system-following rendering.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
	ThemeAuto  ThemeMode = "auto"
)

// ColorScheme names one of the bundled color presets.
type ColorScheme string

const (
	SchemePurple ColorScheme = "purple"
	SchemeBlue   ColorScheme = "blue"
	SchemeGreen  ColorScheme = "green"
	SchemeRed    ColorScheme = "red"
	SchemeOrange ColorScheme = "orange"
	SchemePink   ColorScheme = "pink"
)

// ThemeConfig is the persisted theme selection.
type ThemeConfig struct {
	Mode        ThemeMode   `json:"mode"`
	ColorScheme ColorScheme `json:"colorScheme"`
}

// SoundConfig gates every audio cue. MasterEnabled overrides the per-effect flags.
type SoundConfig struct {
	MasterEnabled bool `json:"masterEnabled"`
	Click         bool `json:"click"`
	Select        bool `json:"select"`
	Reveal        bool `json:"reveal"`
	Back          bool `json:"back"`
	TimerTick     bool `json:"timerTick"`
	TimerEnd      bool `json:"timerEnd"`
	Success       bool `json:"success"`
	Error         bool `json:"error"`
	Warning       bool `json:"warning"`
	Pass          bool `json:"pass"`
	Fullscreen    bool `json:"fullscreen"`
}

// FontConfig holds CSS length tokens. Values are not validated.
type FontConfig struct {
	GridNumber    string `json:"gridNumber"`
	StatsTitle    string `json:"statsTitle"`
	StatsValue    string `json:"statsValue"`
	RoundTitle    string `json:"roundTitle"`
	QuestionTitle string `json:"questionTitle"`
	AnswerTitle   string `json:"answerTitle"`
	TimerTime     string `json:"timerTime"`
}

// AppConfig is the whole persisted configuration record.
type AppConfig struct {
	AppName      string        `json:"appName"`
	CompanyName  string        `json:"companyName"`
	EnableRounds bool          `json:"enableRounds"`
	Rounds       []Round       `json:"rounds"`
	Timer        TimerConfig   `json:"timer"`
	Scoring      ScoringConfig `json:"scoring"`
	Theme        ThemeConfig   `json:"theme"`
	Sounds       SoundConfig   `json:"sounds"`
	Fonts        FontConfig    `json:"fonts"`
}

// Team is a scoreboard row.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Snapshot is the backup document exchanged by export and import.
type Snapshot struct {
	Config    AppConfig  `json:"config"`
	Questions []Question `json:"questions"`
	Version   string     `json:"version,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
}

// SessionState is the ephemeral per-question view state. The zero value is "no question open".
type SessionState struct {
	Open             bool    `json:"open"`
	QuestionID       int     `json:"questionId"`
	AnswerRevealed   bool    `json:"answerRevealed"`
	SecondsRemaining int     `json:"secondsRemaining"`
	TimerRunning     bool    `json:"timerRunning"`
	ZoomScale        float64 `json:"zoomScale"`
}

// GridStats summarizes progress for the grid header.
type GridStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// GridTile is one question tile as the grid renders it.
type GridTile struct {
	ID      int  `json:"id"`
	Visited bool `json:"visited"`
}

// GridGroup is a titled block of tiles. Title is empty when rounds are disabled.
type GridGroup struct {
	Title string     `json:"title"`
	Tiles []GridTile `json:"tiles"`
}

// Standing is a team as the scoreboard drawer shows it.
type Standing struct {
	Rank   int  `json:"rank"`
	Team   Team `json:"team"`
	Active bool `json:"active"`
}

// Scoreboard is the display-ordered team list.
type Scoreboard struct {
	ActiveTeamID string     `json:"activeTeamId,omitempty"`
	Standings    []Standing `json:"standings"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
