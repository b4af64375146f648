// Command catalogcheck loads a template catalog, runs every integrity check
// and prints a summary. It exits with status 1 when the catalog would be
// refused by the server.
//
// Usage:
//
//	catalogcheck [path/to/catalog.yaml]
//
// Without a path the embedded catalog is checked.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"contentwizard/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run checks the catalog named by args (or the embedded one) and returns
// the process exit code.
func run(args []string, out io.Writer) int {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	source := path
	if source == "" {
		source = "embedded catalog"
	}
	fmt.Fprintln(out, titleStyle.Render("Checking "+source))

	cat, err := catalog.Load(path)
	if err != nil {
		var integrity *catalog.IntegrityError
		if !errors.As(err, &integrity) {
			fmt.Fprintln(out, errStyle.Render("✗ "+err.Error()))
			return 1
		}
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("✗ %d integrity problem(s)", len(integrity.Problems))))
		for _, p := range integrity.Problems {
			fmt.Fprintln(out, "  - "+p)
		}
		return 1
	}

	fmt.Fprintln(out, summaryTable(cat))

	if warnings := cat.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("! %d warning(s)", len(warnings))))
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s/%s/%s: %s %q\n", w.ContentType, w.Block, w.Template, w.Message, w.Variable)
		}
	}

	stats := cat.Stats()
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ catalog OK: %d content types, %d niches, %d templates",
		stats.ContentTypes, stats.Niches, stats.Templates)))
	return 0
}

// summaryTable renders one row per content type.
func summaryTable(cat *catalog.Catalog) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("CONTENT TYPE", "CATEGORY", "BLOCKS", "REQUIRED", "TEMPLATES", "NICHES").
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })

	for _, ct := range cat.ListContentTypes() {
		required, templates := 0, 0
		for _, b := range ct.Blocks {
			if b.Required {
				required++
			}
			templates += len(b.Templates)
		}
		t.Row(
			ct.ID,
			string(ct.Category),
			strconv.Itoa(len(ct.Blocks)),
			strconv.Itoa(required),
			strconv.Itoa(templates),
			strconv.Itoa(len(ct.Niches)),
		)
	}
	return t.Render()
}
