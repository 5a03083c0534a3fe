// Package app contains the core application logic for ideascore.
// It wires the corpus source to the uniqueness engine and is shared by the
// CLI and the web server, keeping both free of business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chriscorrea/ideascore/internal/analysis"
	"github.com/chriscorrea/ideascore/internal/cache"
	"github.com/chriscorrea/ideascore/internal/classify"
	"github.com/chriscorrea/ideascore/internal/config"
	"github.com/chriscorrea/ideascore/internal/github"
	"github.com/chriscorrea/ideascore/internal/spinner"
)

var (
	// ErrEmptyIdea is returned when the idea has no text at all.
	ErrEmptyIdea = errors.New("idea must not be empty")
	// ErrSearch marks failures of the corpus source, as opposed to bad input.
	ErrSearch = errors.New("repository search failed")
)

// Searcher fetches the corpus of existing projects for an idea.
type Searcher interface {
	Search(ctx context.Context, idea, language string) ([]analysis.Document, error)
}

// Outcome is one evaluated idea plus presentation hints.
type Outcome struct {
	Result   analysis.Result
	Language string
	Corpus   int  // number of repositories compared against
	Generic  bool // idea is mostly generic project vocabulary
}

// Options configures an App.
type Options struct {
	TopK     int
	Language string   // used when a query leaves the language blank
	Progress *os.File // spinner target; nil disables the spinner
}

// App evaluates ideas against a corpus source.
type App struct {
	searcher   Searcher
	classifier *classify.Classifier
	opts       Options
}

// New creates an App backed by searcher.
func New(searcher Searcher, opts Options) *App {
	if opts.TopK < 0 {
		opts.TopK = 0
	}
	return &App{
		searcher:   searcher,
		classifier: classify.NewClassifier(),
		opts:       opts,
	}
}

// Analyze fetches the corpus for query and scores the idea against it.
// A blank idea fails with ErrEmptyIdea before any search is made;
// corpus failures are wrapped with ErrSearch.
func (a *App) Analyze(ctx context.Context, query analysis.Query) (Outcome, error) {
	query.Idea = strings.TrimSpace(query.Idea)
	if query.Idea == "" {
		return Outcome{}, ErrEmptyIdea
	}
	query.Language = strings.TrimSpace(query.Language)
	if query.Language == "" {
		query.Language = a.opts.Language
	}

	corpus, err := a.search(ctx, query)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	slog.Debug("Fetched corpus", "idea", query.Idea, "language", query.Language, "repositories", len(corpus))

	result, err := analysis.Evaluate(query, corpus, a.opts.TopK)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Result:   result,
		Language: query.Language,
		Corpus:   len(corpus),
		Generic:  a.classifier.IsGeneric(query.Idea),
	}, nil
}

func (a *App) search(ctx context.Context, query analysis.Query) ([]analysis.Document, error) {
	// display spinner for the network round trips
	sp := spinner.ForTerminal(ctx, a.opts.Progress, "Searching GitHub...")
	if sp != nil {
		ctx = github.WithProgress(ctx, sp.Progress)
	}
	sp.Start()
	defer sp.Stop()

	return a.searcher.Search(ctx, query.Idea, query.Language)
}

// nopCloser is returned when no resources need releasing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewSearcher builds the GitHub searcher described by cfg, wrapped in the
// on-disk cache unless caching is disabled. The returned Closer releases the
// cache and must be closed by the caller.
func NewSearcher(cfg *config.Config, useCache bool) (Searcher, io.Closer, error) {
	client := github.NewClient(github.Options{
		BaseURL:    cfg.GitHub.BaseURL,
		Token:      cfg.GitHub.Token,
		UserAgent:  cfg.GitHub.UserAgent,
		PerPage:    cfg.GitHub.PerPage,
		MaxResults: cfg.GitHub.MaxResults,
		Timeout:    cfg.Timeout(),
	})

	if !useCache || !cfg.Cache.Enabled {
		return client, nopCloser{}, nil
	}

	store, err := cache.Open(cfg.Cache.Path, cfg.CacheTTL())
	if err != nil {
		return nil, nil, err
	}
	if n, err := store.Len(); err == nil {
		slog.Debug("Opened corpus cache", "path", cfg.Cache.Path, "entries", n, "ttl", cfg.CacheTTL())
	}
	return cache.NewSearcher(store, client), store, nil
}
