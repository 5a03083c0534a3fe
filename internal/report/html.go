package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"score": FormatScore,
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Project uniqueness report</title>
</head>
<body>
<article id="report">
<h1>Project uniqueness report</h1>
<p><strong>Idea:</strong> <span class="idea">{{.Idea}}</span></p>
<p><strong>Uniqueness score:</strong> <span class="score">{{score .UniquenessScore}}%</span></p>
{{if .SimilarProjects}}<h2>Similar projects</h2>
<table>
<thead><tr><th>#</th><th>Name</th><th>Stars</th><th>URL</th></tr></thead>
<tbody>
{{range $i, $p := .SimilarProjects}}<tr class="project"><td>{{inc $i}}</td><td>{{$p.Name}}</td><td>{{$p.Stars}}</td><td><a href="{{$p.URL}}">{{$p.URL}}</a></td></tr>
{{end}}</tbody>
</table>
{{else}}<p class="empty">No similar projects found.</p>
{{end}}</article>
</body>
</html>
`))

func writeHTML(w io.Writer, r analysis.Result) error {
	if err := pageTemplate.Execute(w, NewRecord(r)); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// writeMarkdown renders the HTML page and converts the report article to
// Markdown, so both renderings always carry the same content.
func writeMarkdown(w io.Writer, r analysis.Result) error {
	var page bytes.Buffer
	if err := writeHTML(&page, r); err != nil {
		return err
	}

	markdown, err := toMarkdown(page.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, markdown+"\n")
	return err
}

// toMarkdown converts the report article of an HTML page to Markdown
func toMarkdown(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse html report: %w", err)
	}
	article := doc.Find("#report")
	if article.Length() == 0 {
		return "", fmt.Errorf("html report has no article")
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// render the score badge bold so it stands out in plain text
	converter.AddRules(md.Rule{
		Filter: []string{"span"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if !selec.HasClass("score") {
				return nil
			}
			bold := "**" + strings.TrimSpace(content) + "**"
			return &bold
		},
	})

	markdown := converter.Convert(article)

	// clean up the markdown output
	cleaned := strings.TrimSpace(markdown)
	cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	return cleaned, nil
}
