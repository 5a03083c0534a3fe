package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/chriscorrea/ideascore/internal/analysis"
	"github.com/chriscorrea/ideascore/internal/app"
	"github.com/chriscorrea/ideascore/internal/report"
)

type pageData struct {
	Idea        string
	Language    string
	Placeholder string
	Error       string
	Result      *pageResult
}

type pageResult struct {
	Score          string
	Language       string
	HighSimilarity bool
	Generic        bool
	Projects       []analysis.Match
}

func newPageResult(out app.Outcome, warnBelow float64) *pageResult {
	return &pageResult{
		Score:          report.FormatScore(out.Result.UniquenessScore),
		Language:       out.Language,
		HighSimilarity: report.HighSimilarity(out.Result, warnBelow),
		Generic:        out.Generic,
		Projects:       out.Result.SimilarProjects,
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Project idea uniqueness</title>
</head>
<body>
<main>
<h1>How unique is your project idea?</h1>
<form method="post" action="/">
<label for="idea">Project idea</label>
<textarea id="idea" name="idea" rows="4" required>{{.Idea}}</textarea>
<label for="language">Programming language</label>
<input id="language" name="language" value="{{.Language}}" placeholder="{{.Placeholder}}">
<button type="submit">Analyze</button>
</form>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{with .Result}}<section id="result">
<h2>Uniqueness score: <span class="score">{{.Score}}%</span></h2>
<p>Compared against <span class="language">{{.Language}}</span> repositories on GitHub.</p>
{{if .HighSimilarity}}<p class="warning">High similarity to existing projects.</p>{{end}}
{{if .Generic}}<p class="hint">This idea is mostly generic wording, so the score is likely dominated by popular repositories.</p>{{end}}
{{if .Projects}}<h3>Similar projects</h3>
<ul>
{{range .Projects}}<li class="project"><a href="{{.URL}}">{{.Name}}</a> <span class="stars">{{.Stars}}</span> stars</li>
{{end}}</ul>
{{else}}<p class="empty">No similar projects found.</p>{{end}}
</section>{{end}}
</main>
</body>
</html>
`))

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		slog.Error("Failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
