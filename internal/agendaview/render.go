// Package agendaview renders agendas for the terminal, tinting each task
// with the colour of its cheese type.
package agendaview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Strikethrough(true)
	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Day renders the agenda of one date as a bordered box.
func Day(date calendar.Date, items []schedule.AgendaItem) string {
	head := headStyle.Render(fmt.Sprintf("AGENDA · %s %s", date.Weekday(), date))
	if len(items) == 0 {
		return boxStyle.Render(head + "\n" + metaStyle.Render("nothing due"))
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, line(it))
	}
	return boxStyle.Render(head + "\n" + strings.Join(lines, "\n"))
}

// Range renders consecutive days, skipping empty ones unless every day is
// empty.
func Range(days []schedule.DayAgenda) string {
	var blocks []string
	for _, d := range days {
		if len(d.Items) > 0 {
			blocks = append(blocks, Day(d.Date, d.Items))
		}
	}
	if len(blocks) == 0 && len(days) > 0 {
		return Day(days[0].Date, nil)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func line(it schedule.AgendaItem) string {
	mark := "[ ]"
	title := it.Activity.Title
	if it.Completed {
		mark = "[x]"
		title = doneStyle.Render(title)
	}

	swatch := " "
	if it.CheeseColor != "" {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(it.CheeseColor)).Render("●")
	}

	var meta []string
	if it.CheeseName != "" {
		meta = append(meta, it.CheeseName)
	}
	if it.ProductionNumber != "" {
		meta = append(meta, fmt.Sprintf("lotto %s, %g L", it.ProductionNumber, it.ProductionLiters))
	}
	if it.Activity.Type == models.ActivityRecurring {
		meta = append(meta, string(it.Activity.Recurrence))
	}

	out := fmt.Sprintf("%s %s %s", mark, swatch, title)
	if len(meta) > 0 {
		out += " " + metaStyle.Render("("+strings.Join(meta, ", ")+")")
	}
	return out
}
