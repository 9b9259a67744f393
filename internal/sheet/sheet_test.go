package sheet

import (
	"bytes"
	"errors"
	"testing"

	"quizmaster/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportThenRead(t *testing.T) {
	questions := []domain.Question{
		{ID: 3, Text: "Capital of France?", Answer: "Paris"},
		{ID: 7, Text: "Name this tune", Answer: "Ode to Joy", MediaType: domain.MediaAudio, MediaURL: "https://example.com/ode.wav"},
	}
	data, err := Export(questions)
	require.NoError(t, err)

	rows, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].ID)
	assert.Equal(t, 3, *rows[0].ID)
	assert.Equal(t, "Paris", rows[0].Draft.Answer)
	assert.Equal(t, domain.MediaAudio, rows[1].Draft.MediaType)
	assert.Equal(t, "https://example.com/ode.wav", rows[1].Draft.MediaURL)
	assert.Equal(t, 3, rows[1].Line)
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadMatchesHeadersCaseInsensitively(t *testing.T) {
	data := workbook(t, [][]any{
		{"ANSWER", " question "},
		{"42", "Meaning of life?"},
		{"", ""},
		{"Blue", "Sky colour?"},
	})
	rows, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].ID)
	assert.Equal(t, "Meaning of life?", rows[0].Draft.Text)
	assert.Equal(t, "42", rows[0].Draft.Answer)
	assert.Equal(t, 4, rows[1].Line)
}

func TestReadRequiresQuestionColumn(t *testing.T) {
	data := workbook(t, [][]any{{"ID", "Answer"}, {1, "x"}})
	_, err := Read(bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadRejectsBadRows(t *testing.T) {
	_, err := Read(bytes.NewReader(workbook(t, [][]any{{"ID", "Question", "Answer"}, {"seven", "q", "a"}})))
	assert.Error(t, err)

	_, err = Read(bytes.NewReader(workbook(t, [][]any{{"Question", "Answer", "Media Type"}, {"q", "a", "video"}})))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedMedia))
}
