// Package cli renders allocation plans and ad scores for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/scoring"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. A row holding the single cell "---" draws a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// the first column is a label, the rest are numbers
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}
	rule("╰", "┴", "╯")

	return b.String()
}

// FormatMoney formats a currency amount with two decimals and thousands separators.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := math.Floor(v)
	cents := math.Round((v - whole) * 100)
	if cents >= 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("%s$%s.%02d", sign, FormatNumber(int64(whole)), int64(cents))
}

// FormatNumber adds thousands separators to an integer.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatROI formats a ratio such as 11.5 as "1150.0%".
func FormatROI(roi float64) string {
	return fmt.Sprintf("%.1f%%", roi*100)
}

// FormatCPA formats a cost per acquisition; channels without conversions render as "n/a".
func FormatCPA(cpa float64) string {
	if math.IsInf(cpa, 0) || math.IsNaN(cpa) {
		return "n/a"
	}
	return FormatMoney(cpa)
}

// RenderAllocation renders the slab table, the projected totals and the explanations.
func RenderAllocation(result allocation.AllocationResult) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%s  %s  %s", result.Industry, result.Audience, FormatMoney(result.TotalBudget))))
	b.WriteString("\n\n")

	projected := make(map[string]allocation.SimulationResult, len(result.Projected))
	for _, row := range result.Projected {
		projected[row.Channel] = row.Result
	}

	rows := make([][]string, 0, len(result.Ranked)+4)
	for i, slab := range result.Allocation.Slabs {
		if i > 0 && len(slab.Entries) > 0 && len(rows) > 0 {
			rows = append(rows, []string{"---"})
		}
		for _, entry := range slab.Entries {
			sim := projected[entry.Channel]
			rows = append(rows, []string{
				entry.Channel,
				slab.Name,
				FormatMoney(entry.Amount),
				FormatNumber(int64(math.Round(sim.Conversions))),
				FormatMoney(sim.Revenue),
				FormatROI(sim.ROI),
				FormatCPA(sim.CPA),
			})
		}
	}
	b.WriteString(RenderTable(Table{
		Title:   "Allocation",
		Headers: []string{"Channel", "Slab", "Budget", "Conversions", "Revenue", "ROI", "CPA"},
		Rows:    rows,
	}))

	totals := allocation.Sum(result.Projected)
	b.WriteString("\n")
	b.WriteString(RenderTable(Table{
		Title: "Projected",
		Rows: [][]string{
			{"Spend", FormatMoney(totals.Spend)},
			{"Revenue", FormatMoney(totals.Revenue)},
			{"Conversions", FormatNumber(int64(math.Round(totals.Conversions)))},
			{"Blended ROI", FormatROI(totals.ROI)},
		},
	}))

	if len(result.Explanations) > 0 {
		b.WriteString("\n")
		for _, line := range result.Explanations {
			b.WriteString("  ")
			b.WriteString(mutedStyle.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderScore renders the sub-score breakdown, the total with its band and the suggestions.
func RenderScore(score scoring.AdScore) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("AD SCORE  %.1f / 100  %s", score.Total, score.Band)))
	b.WriteString("\n\n")

	s := score.Scores
	b.WriteString(RenderTable(Table{
		Headers: []string{"Component", "Score", "Max"},
		Rows: [][]string{
			{"Readability", fmt.Sprintf("%.2f", s.Readability), fmt.Sprint(scoring.MaxReadability)},
			{"Length", fmt.Sprintf("%.2f", s.LengthConciseness), fmt.Sprint(scoring.MaxLength)},
			{"Emotion", fmt.Sprintf("%.2f", s.Emotion), fmt.Sprint(scoring.MaxEmotion)},
			{"Power words", fmt.Sprintf("%.2f", s.PowerWords), fmt.Sprint(scoring.MaxPowerWords)},
			{"Call to action", fmt.Sprintf("%.2f", s.CTA), fmt.Sprint(scoring.MaxCTA)},
			{"Uniqueness", fmt.Sprintf("%.2f", s.Uniqueness), fmt.Sprint(scoring.MaxUniqueness)},
			{"---"},
			{"Total", fmt.Sprintf("%.2f", score.Total), "100"},
		},
	}))

	if len(score.Suggestions) > 0 {
		b.WriteString("\n  ")
		b.WriteString(headerStyle.Render("Suggestions"))
		b.WriteString("\n")
		for _, line := range score.Suggestions {
			b.WriteString("  - ")
			b.WriteString(bandStyle(score.Band).Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderCatalog lists the benchmarks of every industry.
func RenderCatalog() (string, error) {
	var b strings.Builder
	for _, industry := range allocation.Industries() {
		channels, err := allocation.Channels(industry)
		if err != nil {
			return "", err
		}
		rows := make([][]string, 0, len(channels))
		for _, ch := range channels {
			rows = append(rows, []string{
				ch.Channel,
				FormatMoney(ch.Stats.CPM),
				fmt.Sprintf("%.2f%%", ch.Stats.CTR*100),
				fmt.Sprintf("%.2f%%", ch.Stats.CVR*100),
			})
		}
		b.WriteString(RenderTable(Table{
			Title:   string(industry),
			Headers: []string{"Channel", "CPM", "CTR", "CVR"},
			Rows:    rows,
		}))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func bandStyle(band string) lipgloss.Style {
	switch band {
	case scoring.BandExcellent, scoring.BandGood:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case scoring.BandAverage:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed)
	}
}
