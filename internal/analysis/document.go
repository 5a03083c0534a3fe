package analysis

import "strings"

// Document is one existing project the idea is compared against.
type Document struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	URL         string   `json:"url"`
	Stars       int      `json:"stars"`
}

// Text returns the composite text used for comparison: name, description and
// topics joined by spaces and lower-cased.
func (d Document) Text() string {
	return strings.ToLower(d.Name + " " + d.Description + " " + strings.Join(d.Topics, " "))
}

// Query is the idea under evaluation. Language only selects which corpus was
// fetched and plays no part in scoring.
type Query struct {
	Idea     string `json:"idea"`
	Language string `json:"language"`
}

// Match is a reported similar project.
type Match struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Stars int    `json:"stars"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Idea            string  `json:"idea"`
	UniquenessScore float64 `json:"uniqueness_score"`
	SimilarProjects []Match `json:"similar_projects"`
}

// RoundedScore returns the uniqueness score rounded to one decimal place.
func (r Result) RoundedScore() float64 {
	return Round1(r.UniquenessScore)
}
