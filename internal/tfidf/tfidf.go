// Package tfidf turns free text into comparable TF-IDF vectors.
//
// This package implements the lexical half of the uniqueness engine: it
// normalizes text, extracts unigram and bigram terms after stop-word removal,
// fits a vocabulary over a joint set of texts and emits one dense,
// L2-normalised weight vector per text.
//
// The TF-IDF weighting combines:
//   - Term Frequency (TF): raw count of a term within one text
//   - Inverse Document Frequency (IDF): how rare a term is across the joint set
//
// Usage Example:
//
//	space := tfidf.BuildSpace(idea, repoTexts)
//	sim := tfidf.CosineSimilarity(space.Query, space.Corpus[0])
//
// Fitting the query together with the corpus is what places every vector in
// the same coordinate space.
package tfidf

import (
	"log/slog"
	"math"
	"sort"
	"strings"
)

// Vectorizer learns a vocabulary and IDF weights from a set of texts.
// A zero Vectorizer is ready for Fit; it is not safe for concurrent Fit calls.
type Vectorizer struct {
	Vocabulary     map[string]int // term -> dense index, assigned in sorted term order
	IDF            []float64      // smoothed IDF per vocabulary index
	DocFrequencies map[string]int // number of texts containing each term
	TotalDocuments int            // number of texts seen by Fit
}

// NewVectorizer creates an empty vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		Vocabulary:     map[string]int{},
		IDF:            []float64{},
		DocFrequencies: map[string]int{},
	}
}

// Space is a fitted vector space for one query and its corpus.
type Space struct {
	Vocabulary map[string]int
	Query      []float64
	Corpus     [][]float64
}

// Dimensions returns the size of the shared vocabulary.
func (s Space) Dimensions() int {
	return len(s.Vocabulary)
}

// BuildSpace fits a vectorizer jointly over query and corpus and returns the
// vector of every text. An empty vocabulary yields zero-length vectors.
func BuildSpace(query string, corpus []string) Space {
	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, query)
	texts = append(texts, corpus...)

	v := NewVectorizer()
	v.Fit(texts)

	space := Space{
		Vocabulary: v.Vocabulary,
		Query:      v.Transform(query),
		Corpus:     make([][]float64, len(corpus)),
	}
	for i, text := range corpus {
		space.Corpus[i] = v.Transform(text)
	}
	return space
}

// Fit builds the vocabulary and IDF weights for texts.
// Raw texts are normalized before term extraction.
func (v *Vectorizer) Fit(texts []string) {
	termLists := make([][]string, len(texts))
	for i, text := range texts {
		termLists[i] = Terms(text)
	}
	v.fit(termLists)
}

// Transform returns the L2-normalised TF-IDF vector of text in the fitted
// space. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) []float64 {
	return v.vectorize(Terms(text))
}

func (v *Vectorizer) fit(termLists [][]string) {
	v.DocFrequencies = make(map[string]int)
	v.TotalDocuments = len(termLists)

	// track document frequency for each unique term
	for _, terms := range termLists {
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			v.DocFrequencies[term]++
		}
	}

	sorted := make([]string, 0, len(v.DocFrequencies))
	for term := range v.DocFrequencies {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)

	v.Vocabulary = make(map[string]int, len(sorted))
	v.IDF = make([]float64, len(sorted))
	n := float64(v.TotalDocuments)
	for i, term := range sorted {
		v.Vocabulary[term] = i
		// smoothed IDF: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(v.DocFrequencies[term]))) + 1
	}

	slog.Debug("Fitted TF-IDF vocabulary", "documents", v.TotalDocuments, "terms", len(v.Vocabulary))
}

func (v *Vectorizer) vectorize(terms []string) []float64 {
	vector := make([]float64, len(v.Vocabulary))
	if len(vector) == 0 {
		return vector
	}

	for _, term := range terms {
		if idx, ok := v.Vocabulary[term]; ok {
			vector[idx]++
		}
	}

	var norm float64
	for i, count := range vector {
		if count == 0 {
			continue
		}
		vector[i] = count * v.IDF[i]
		norm += vector[i] * vector[i]
	}

	if norm == 0 {
		return vector
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

// Terms extracts the unigram and bigram terms of text. The text is normalized
// and stop words are removed before bigrams are formed, so a bigram may join
// two words that were separated by a stop word in the raw text.
func Terms(text string) []string {
	var tokens []string
	for _, token := range strings.Fields(Normalize(text)) {
		if !IsStopWord(token) {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// CosineSimilarity calculates the cosine similarity between two dense vectors.
// Vectors of different length, empty vectors and zero vectors all yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
