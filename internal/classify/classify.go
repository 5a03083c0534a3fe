// Package classify flags project ideas described mostly in generic words.
//
// A generic idea ("simple python app") matches thousands of popular
// repositories on shared vocabulary alone, so its uniqueness score says little
// about the idea itself. The classifier stems each word and measures how much
// of the idea is made of common project vocabulary. The result is a hint for
// the reader and never changes the score.
package classify

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/chriscorrea/ideascore/internal/tfidf"
)

// genericWords are words that describe almost any software project.
// They are stemmed once when a Classifier is built.
var genericWords = []string{
	// --- Project kinds ---
	"app", "application", "tool", "utility", "library", "framework",
	"project", "program", "software", "script", "package", "module",
	"platform", "service", "website", "site", "bot", "plugin",

	// --- Interfaces ---
	"web", "cli", "command", "line", "api", "gui", "interface", "dashboard",

	// --- Languages ---
	"python", "javascript", "java", "golang", "rust", "typescript", "node",

	// --- Filler adjectives and verbs ---
	"simple", "basic", "easy", "small", "lightweight", "fast", "modern",
	"awesome", "better", "create", "build", "make", "using", "based",
	"manager", "management", "generator", "helper",
}

// DefaultThreshold is the share of generic words above which an idea is
// considered generic.
const DefaultThreshold = 0.5

// Classifier measures how generic an idea's wording is.
type Classifier struct {
	// tokenRegex extracts word tokens from text
	tokenRegex   *regexp.Regexp
	genericStems map[string]struct{}
	threshold    float64
}

// NewClassifier creates and initializes a new Classifier instance
func NewClassifier() *Classifier {
	stems := make(map[string]struct{}, len(genericWords))
	for _, word := range genericWords {
		stems[stem(word)] = struct{}{}
	}
	return &Classifier{
		tokenRegex:   regexp.MustCompile(`\b[a-zA-Z]+\b`),
		genericStems: stems,
		threshold:    DefaultThreshold,
	}
}

// GenericRatio returns the share of content words in idea that are generic
// project vocabulary. Stop words do not count; an idea with no content words
// has ratio 0.
func (c *Classifier) GenericRatio(idea string) float64 {
	tokens := c.tokenRegex.FindAllString(strings.ToLower(idea), -1)

	var content, generic int
	for _, token := range tokens {
		if len(token) < 2 || tfidf.IsStopWord(token) {
			continue
		}
		content++
		if _, ok := c.genericStems[stem(token)]; ok {
			generic++
		}
	}

	if content == 0 {
		return 0
	}
	return float64(generic) / float64(content)
}

// IsGeneric reports whether more than the threshold share of idea is generic.
func (c *Classifier) IsGeneric(idea string) bool {
	return c.GenericRatio(idea) > c.threshold
}

// stem reduces a word with the English snowball stemmer
func stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil {
		// if stemming fails, use the original word
		return word
	}
	return stemmed
}
