// Package sheet reads and writes question lists as XLSX workbooks.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizmaster/internal/domain"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Questions"

// Headers is the column order of an exported sheet.
var Headers = []string{"ID", "Question", "Answer", "Media Type", "Media URL"}

var (
	ErrNoSheets      = errors.New("workbook has no sheets")
	ErrMissingColumn = errors.New("missing required column")
)

// Row is one parsed data row. ID is nil when the cell was blank.
type Row struct {
	Line  int
	ID    *int
	Draft domain.QuestionDraft
}

// Export writes questions into a single-sheet workbook.
func Export(questions []domain.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for r, q := range questions {
		row := []any{q.ID, q.Text, q.Answer, string(q.MediaType), q.MediaURL}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write question %d: %w", q.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Read parses the first sheet of a workbook. Headers are matched case-insensitively;
// "Question" and "Answer" are required, the rest are optional. Blank rows are skipped.
func Read(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"question", "answer"} {
		if _, ok := headerMap[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := headerMap[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Row
	for i, row := range rows[1:] {
		line := i + 2
		text, answer := cell(row, "question"), cell(row, "answer")
		if text == "" && answer == "" {
			continue
		}

		parsed := Row{
			Line: line,
			Draft: domain.QuestionDraft{
				Text:      text,
				Answer:    answer,
				MediaType: domain.MediaType(strings.ToLower(cell(row, "media type"))),
				MediaURL:  cell(row, "media url"),
			},
		}
		if raw := cell(row, "id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid id %q", line, raw)
			}
			parsed.ID = &id
		}
		switch parsed.Draft.MediaType {
		case "", domain.MediaImage, domain.MediaAudio:
		default:
			return nil, fmt.Errorf("row %d: %w: %q", line, domain.ErrUnsupportedMedia, parsed.Draft.MediaType)
		}
		out = append(out, parsed)
	}
	return out, nil
}
