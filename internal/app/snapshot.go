package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"quizmaster/internal/domain"
)

// SnapshotVersion is stamped on every exported backup. Import does not check it.
const SnapshotVersion = "1.0.0"

// BackupFileName names a backup taken at now.
func BackupFileName(now time.Time) string {
	return "quizmaster_backup_" + now.Format("2006-01-02") + ".json"
}

func newSnapshot(cfg domain.AppConfig, questions []domain.Question, now time.Time) domain.Snapshot {
	if questions == nil {
		questions = []domain.Question{}
	}
	return domain.Snapshot{
		Config:    cfg,
		Questions: questions,
		Version:   SnapshotVersion,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// encodeSnapshot renders a snapshot as indented JSON.
func encodeSnapshot(s domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeSnapshot accepts any document carrying non-null config and questions keys.
func decodeSnapshot(data []byte) (domain.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	for _, key := range []string{"config", "questions"} {
		v, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return domain.Snapshot{}, fmt.Errorf("%w: missing %s", domain.ErrInvalidSnapshot, key)
		}
	}

	var s domain.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if s.Questions == nil {
		s.Questions = []domain.Question{}
	}
	return s, nil
}
