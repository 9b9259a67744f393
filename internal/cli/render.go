package cli

import (
	"fmt"
	"strconv"
	"strings"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent = lipgloss.Color("#7c3aed")
	muted  = lipgloss.Color("#6b7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#eab308"))
	tileStyle    = lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func renderQuestions(questions []domain.Question, cfg domain.AppConfig) string {
	rows := make([][]string, 0, len(questions))
	for _, q := range questions {
		round := ""
		if r, ok := domain.FindRound(q.ID, cfg.Rounds, cfg.EnableRounds); ok {
			round = r.Title
		}
		rows = append(rows, []string{
			strconv.Itoa(q.ID), truncate(q.Text, 48), truncate(q.Answer, 24), string(q.MediaType), round,
		})
	}
	return renderTable([]string{"ID", "Question", "Answer", "Media", "Round"}, rows)
}

func renderStandings(board domain.Scoreboard) string {
	rows := make([][]string, 0, len(board.Standings))
	for _, s := range board.Standings {
		marker := ""
		if s.Active {
			marker = activeStyle.Render("*")
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Rank), s.Team.Name, strconv.Itoa(s.Team.Score), s.Team.ID, marker,
		})
	}
	return renderTable([]string{"#", "Team", "Score", "ID", "Active"}, rows)
}

func renderStats(stats domain.GridStats) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d",
		mutedStyle.Render("total"), stats.Total,
		mutedStyle.Render("completed"), stats.Completed,
		mutedStyle.Render("remaining"), stats.Remaining)
}

// renderGrid prints one block per group. Visited tiles are shown as a dot.
func renderGrid(view app.GridView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(view.Branding.AppName))
	b.WriteString("\n")
	b.WriteString(renderStats(view.Stats))
	b.WriteString("\n")
	for _, g := range view.Groups {
		b.WriteString("\n")
		if g.Title != "" {
			b.WriteString(titleStyle.Render(g.Title))
			b.WriteString("\n")
		}
		cells := make([]string, 0, len(g.Tiles))
		for i, t := range g.Tiles {
			label := strconv.Itoa(t.ID)
			if t.Visited {
				label = mutedStyle.Render("·")
			}
			cells = append(cells, tileStyle.Render(label))
			if (i+1)%10 == 0 || i == len(g.Tiles)-1 {
				b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
				b.WriteString("\n")
				cells = cells[:0]
			}
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
