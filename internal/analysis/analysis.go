// Package analysis scores how unique a project idea is against a corpus of
// existing projects.
//
// Evaluate is the single engine shared by every front end. It normalizes and
// vectorizes the idea together with the corpus, takes the highest cosine
// similarity to any corpus entry and reports 100 minus that similarity as a
// percentage, alongside the top of the corpus as presentation matches.
package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/chriscorrea/ideascore/internal/tfidf"
)

// DefaultTopK is the number of similar projects reported per result.
const DefaultTopK = 3

// MaxScore is the score of an idea with no competing work.
const MaxScore = 100.0

var (
	// ErrInvalidDocument is returned for corpus entries that violate the
	// document contract, such as a negative star count.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrNonFiniteVector is returned when a vector handed to Score holds a
	// NaN or infinite entry.
	ErrNonFiniteVector = errors.New("non-finite vector entry")
)

// Evaluate computes the uniqueness result for query against corpus,
// reporting the first topK corpus entries as similar projects.
//
// Degenerate input is never an error: an empty corpus scores 100, and so
// does a blank idea or one that normalizes to nothing. Rejecting blank ideas
// is left to the front ends. Only contract violations fail.
func Evaluate(query Query, corpus []Document, topK int) (Result, error) {
	if err := Validate(corpus); err != nil {
		return Result{}, err
	}

	result := Result{
		Idea:            query.Idea,
		UniquenessScore: MaxScore,
		SimilarProjects: Rank(corpus, topK),
	}

	// no competing work, skip vectorization entirely
	if len(corpus) == 0 {
		slog.Debug("Empty corpus, maximal uniqueness", "idea", query.Idea)
		return result, nil
	}

	texts := make([]string, len(corpus))
	for i, doc := range corpus {
		texts[i] = doc.Text()
	}

	space := tfidf.BuildSpace(strings.ToLower(query.Idea), texts)
	score, err := Score(space.Query, space.Corpus)
	if err != nil {
		return Result{}, err
	}
	result.UniquenessScore = score

	slog.Debug("Evaluated idea", "idea", query.Idea, "language", query.Language,
		"corpus", len(corpus), "dimensions", space.Dimensions(), "score", result.UniquenessScore)
	return result, nil
}

// Validate checks every document against the corpus contract.
func Validate(corpus []Document) error {
	for i, doc := range corpus {
		if doc.Stars < 0 {
			return fmt.Errorf("%w: entry %d (%q) has negative stars %d", ErrInvalidDocument, i, doc.Name, doc.Stars)
		}
	}
	return nil
}

// Score converts the best match between the query vector and the corpus
// vectors into a uniqueness score in [0, 100].
//
// The single closest corpus entry dominates: the score is 100 - 100*m where m
// is the maximum cosine similarity. An empty corpus scores 100. Any NaN or
// infinite entry in query or corpus fails with ErrNonFiniteVector.
func Score(query []float64, corpus [][]float64) (float64, error) {
	if err := ValidateVector(query); err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	for i, vec := range corpus {
		if err := ValidateVector(vec); err != nil {
			return 0, fmt.Errorf("corpus entry %d: %w", i, err)
		}
	}
	if len(corpus) == 0 {
		return MaxScore, nil
	}

	var maxSimilarity float64
	for _, vec := range corpus {
		if sim := tfidf.CosineSimilarity(query, vec); sim > maxSimilarity {
			maxSimilarity = sim
		}
	}

	return clamp(MaxScore-maxSimilarity*MaxScore, 0, MaxScore), nil
}

// ValidateVector reports an ErrNonFiniteVector for the first NaN or
// infinite entry of vec.
func ValidateVector(vec []float64) error {
	for i, x := range vec {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrNonFiniteVector, i, x)
		}
	}
	return nil
}

// Rank returns the first k corpus entries in supplied order.
// The corpus is already ordered by the search collaborator; Rank does not
// re-sort by similarity.
func Rank(corpus []Document, k int) []Match {
	if k <= 0 || len(corpus) == 0 {
		return []Match{}
	}
	if k > len(corpus) {
		k = len(corpus)
	}

	matches := make([]Match, k)
	for i, doc := range corpus[:k] {
		matches[i] = Match{Name: doc.Name, URL: doc.URL, Stars: doc.Stars}
	}
	return matches
}

// Round1 rounds v to one decimal place. Exact halves of the binary value
// round to even, so 87.25 becomes 87.2 and 12.75 becomes 12.8.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	// FormatFloat rounds the exact decimal expansion, ties to even
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
