package domain

import "errors"

var (
	// ErrKeyNotFound is returned by a store when nothing is persisted under a key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrQuestionNotFound indicates no question carries the requested id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrIDTaken is returned when an edit would give two questions the same id.
	ErrIDTaken = errors.New("question id already taken")
	// ErrTeamNotFound indicates no team carries the requested id.
	ErrTeamNotFound = errors.New("team not found")
	// ErrNoActiveTeam is returned by quick scoring when no team is selected.
	ErrNoActiveTeam = errors.New("no active team")
	// ErrInvalidSnapshot rejects an import document missing config or questions.
	ErrInvalidSnapshot = errors.New("invalid backup document")
	// ErrNotConfirmed is returned when a destructive action was declined.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrQuestionVisited blocks re-opening a visited question without the override.
	ErrQuestionVisited = errors.New("question already visited")
	// ErrNoActiveQuestion is returned by session actions when no question is open.
	ErrNoActiveQuestion = errors.New("no question is open")
	// ErrUnsupportedMedia indicates the attachment could not be decoded.
	ErrUnsupportedMedia = errors.New("unsupported media")
)
