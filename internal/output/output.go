// Package output renders conversion results for the terminal.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/itsmostafa/bomfold/internal/materialize"
	"github.com/itsmostafa/bomfold/internal/pipeline"
)

var (
	// titleStyle for bold red headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summary box with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)

	// headerBoxStyle for the header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)

	// cellStyle pads table cells
	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	// headerCellStyle for table column names
	headerCellStyle = cellStyle.
			Bold(true).
			Foreground(lipgloss.Color("81"))
)

// FormatHeader renders the input and rules a run was started with
func FormatHeader(w io.Writer, input, rules string) {
	content := fmt.Sprintf("%s %s\n%s %s",
		dimStyle.Render("Input:"), titleStyle.Render(input),
		dimStyle.Render("Rules:"), rules,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatSummary renders the run summary box
func FormatSummary(w io.Writer, result *pipeline.Result, err error) {
	var statusIndicator string
	if err != nil {
		statusIndicator = errorStyle.Render("ERROR")
	} else {
		statusIndicator = successStyle.Render("OK")
	}

	var stats pipeline.Stats
	var runID string
	if result != nil {
		stats = result.Stats
		runID = result.RunID
	}

	line1 := fmt.Sprintf("%s %s  %s %s  %s %d",
		dimStyle.Render("Rows:"), formatNumber(stats.Rows),
		dimStyle.Render("Nodes:"), formatNumber(stats.Nodes),
		dimStyle.Render("Depth:"), stats.Depth,
	)

	line2 := fmt.Sprintf("%s %s  %s %s  %s",
		dimStyle.Render("BOMs:"), formatNumber(stats.BOMs),
		dimStyle.Render("Entries:"), formatNumber(stats.Entries),
		statusIndicator,
	)

	line3 := fmt.Sprintf("%s %.3fs  %s",
		dimStyle.Render("Duration:"), stats.Duration,
		dimStyle.Render(runID),
	)

	content := titleStyle.Render("Conversion Complete") + "\n" + line1 + "\n" + line2 + "\n" + line3
	if err != nil {
		content += "\n" + errorStyle.Render(err.Error())
	}
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatRecords renders both record sheets as tables. limit caps the rows
// shown per table; 0 shows everything.
func FormatRecords(w io.Writer, out *materialize.Output, limit int) {
	boms := make([][]string, 0, len(out.BOMs))
	for _, h := range out.BOMs {
		boms = append(boms, []string{h.ID.String(), h.Name.String()})
	}
	formatTable(w, "BOMs", []string{"ID", "Name"}, boms, limit)

	entries := make([][]string, 0, len(out.BOMEntries))
	for _, e := range out.BOMEntries {
		entries = append(entries, []string{
			e.BOMID.String(),
			string(e.Type),
			e.EntryID.String(),
			strconv.FormatFloat(e.Quantity, 'f', -1, 64),
		})
	}
	formatTable(w, "BOM Entries", []string{"BOM ID", "Type", "Entry ID", "Quantity"}, entries, limit)
}

func formatTable(w io.Writer, title string, headers []string, rows [][]string, limit int) {
	total := len(rows)
	if limit > 0 && total > limit {
		rows = rows[:limit]
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s)", title, formatNumber(total))))
	fmt.Fprintln(w, t.Render())
	if len(rows) < total {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... %s more", formatNumber(total-len(rows)))))
	}
}

// formatNumber adds commas to large numbers for readability
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
