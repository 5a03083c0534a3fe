package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

// Table renders the similar projects of r as a console table. It returns an
// empty string when there are no matches.
func Table(r analysis.Result) string {
	if len(r.SimilarProjects) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Name", "Stars", "URL"})
	for i, p := range r.SimilarProjects {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Stars), p.URL})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
