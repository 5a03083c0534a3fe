package server_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/ideascore/internal/analysis"
	"github.com/chriscorrea/ideascore/internal/app"
	"github.com/chriscorrea/ideascore/internal/server"
)

// Mocks

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, query analysis.Query) (app.Outcome, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(app.Outcome), args.Error(1)
}

func sampleOutcome() app.Outcome {
	return app.Outcome{
		Result: analysis.Result{
			Idea:            "habit tracker with streaks",
			UniquenessScore: 32.46,
			SimilarProjects: []analysis.Match{
				{Name: "loop-habits", URL: "https://github.com/a/loop-habits", Stars: 7000},
				{Name: "streaks", URL: "https://github.com/b/streaks", Stars: 1200},
			},
		},
		Language: "kotlin",
		Corpus:   40,
	}
}

func setupServer(opts server.Options) (*server.Server, *MockAnalyzer) {
	analyzer := new(MockAnalyzer)
	if opts.Language == "" {
		opts.Language = "python"
	}
	if opts.WarnBelow == 0 {
		opts.WarnBelow = 40
	}
	return server.New(analyzer, opts), analyzer
}

func postForm(t *testing.T, h http.Handler, idea, language string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"idea": {idea}, "language": {language}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func parse(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return doc
}

func TestHandleForm(t *testing.T) {
	srv, _ := setupServer(server.Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	doc := parse(t, rr)
	assert.Equal(t, 1, doc.Find("form textarea[name=idea]").Length())
	assert.Equal(t, "python", doc.Find("input[name=language]").AttrOr("placeholder", ""))
	assert.Equal(t, 0, doc.Find("#result").Length())
}

func TestHandleSubmit(t *testing.T) {
	srv, analyzer := setupServer(server.Options{})
	analyzer.On("Analyze", mock.Anything, analysis.Query{Idea: "habit tracker with streaks", Language: "kotlin"}).
		Return(sampleOutcome(), nil)

	rr := postForm(t, srv.Handler(), "  habit tracker with streaks ", "kotlin")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parse(t, rr)
	assert.Equal(t, "32.5%", doc.Find("#result .score").Text())
	assert.Equal(t, "kotlin", doc.Find("#result .language").Text())
	assert.Equal(t, 2, doc.Find("li.project").Length())
	assert.Equal(t, "https://github.com/a/loop-habits", doc.Find("li.project a").First().AttrOr("href", ""))
	assert.Equal(t, 1, doc.Find(".warning").Length(), "score below warn threshold should be flagged")
	assert.Equal(t, 0, doc.Find(".hint").Length())
	assert.Equal(t, "habit tracker with streaks", doc.Find("textarea[name=idea]").Text())
	analyzer.AssertExpectations(t)
}

func TestHandleSubmitEmptyCorpus(t *testing.T) {
	srv, analyzer := setupServer(server.Options{})
	out := app.Outcome{
		Result:   analysis.Result{Idea: "zither tuning", UniquenessScore: 100, SimilarProjects: []analysis.Match{}},
		Language: "python",
		Generic:  true,
	}
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(out, nil)

	rr := postForm(t, srv.Handler(), "zither tuning", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parse(t, rr)
	assert.Equal(t, "100.0%", doc.Find(".score").Text())
	assert.Equal(t, 1, doc.Find("p.empty").Length())
	assert.Equal(t, 0, doc.Find(".warning").Length())
	assert.Equal(t, 1, doc.Find(".hint").Length())
}

func TestHandleSubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{
			name:       "empty idea",
			err:        app.ErrEmptyIdea,
			wantStatus: http.StatusBadRequest,
			wantText:   "Please describe your project idea.",
		},
		{
			name:       "upstream failure",
			err:        errors.Join(app.ErrSearch, errors.New("github returned 403")),
			wantStatus: http.StatusBadGateway,
			wantText:   "github returned 403",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantText:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, analyzer := setupServer(server.Options{})
			analyzer.On("Analyze", mock.Anything, mock.Anything).Return(app.Outcome{}, tt.err)

			rr := postForm(t, srv.Handler(), "some idea", "go")

			assert.Equal(t, tt.wantStatus, rr.Code)
			doc := parse(t, rr)
			assert.Contains(t, doc.Find("p.error").Text(), tt.wantText)
			assert.Equal(t, 0, doc.Find("#result").Length())
		})
	}
}

func TestHandleSubmitSavesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "project_analysis.csv")
	srv, analyzer := setupServer(server.Options{ReportPath: path})
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(sampleOutcome(), nil)

	rr := postForm(t, srv.Handler(), "habit tracker with streaks", "kotlin")
	require.Equal(t, http.StatusOK, rr.Code)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"idea", "uniqueness_score", "similar_projects"}, rows[0])
	assert.Equal(t, "32.5", rows[1][1])
	assert.Contains(t, rows[1][2], "loop-habits")
}

func TestHandleAnalyze(t *testing.T) {
	srv, analyzer := setupServer(server.Options{})
	analyzer.On("Analyze", mock.Anything, analysis.Query{Idea: "habit tracker with streaks", Language: "kotlin"}).
		Return(sampleOutcome(), nil)

	body := `{"idea": "habit tracker with streaks", "language": "kotlin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp server.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "habit tracker with streaks", resp.Idea)
	assert.Equal(t, 32.5, resp.UniquenessScore)
	assert.Equal(t, "kotlin", resp.Language)
	assert.Equal(t, 40, resp.Repositories)
	assert.Len(t, resp.SimilarProjects, 2)
}

func TestHandleAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "invalid json", body: `{"idea":`, wantStatus: http.StatusBadRequest},
		{name: "empty idea", body: `{"idea": ""}`, err: app.ErrEmptyIdea, wantStatus: http.StatusBadRequest},
		{name: "upstream failure", body: `{"idea": "chess engine"}`, err: app.ErrSearch, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, analyzer := setupServer(server.Options{})
			if tt.err != nil {
				analyzer.On("Analyze", mock.Anything, mock.Anything).Return(app.Outcome{}, tt.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.err == nil {
				analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := setupServer(server.Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := setupServer(server.Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestListenAndServeShutdown(t *testing.T) {
	srv, _ := setupServer(server.Options{Bind: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
