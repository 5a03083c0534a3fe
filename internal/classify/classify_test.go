package classify_test

import (
	"math"
	"testing"

	"github.com/chriscorrea/ideascore/internal/classify"
)

func TestNewClassifier(t *testing.T) {
	classifier := classify.NewClassifier()
	if classifier == nil {
		t.Fatal("NewClassifier() returned nil")
	}
}

func TestClassifier_GenericRatio(t *testing.T) {
	classifier := classify.NewClassifier()

	tests := []struct {
		name        string
		idea        string
		expected    float64
		description string
	}{
		{
			name:        "empty idea",
			idea:        "",
			expected:    0,
			description: "ideas without words have no generic share",
		},
		{
			name:        "only stop words",
			idea:        "the and of",
			expected:    0,
			description: "stop words are not content words",
		},
		{
			name:        "fully generic",
			idea:        "Simple Python app tool",
			expected:    1,
			description: "every word is common project vocabulary",
		},
		{
			name:        "inflected generic words",
			idea:        "simple tools using libraries",
			expected:    1,
			description: "stemming folds plurals and -ing forms onto the generic list",
		},
		{
			name:        "specific idea",
			idea:        "distributed vector database",
			expected:    0,
			description: "domain words are not generic",
		},
		{
			name:        "mixed idea",
			idea:        "todo list app",
			expected:    1.0 / 3.0,
			description: "app is generic, todo and list are not",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.GenericRatio(tt.idea)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("GenericRatio(%q) = %f, want %f: %s", tt.idea, got, tt.expected, tt.description)
			}
		})
	}
}

func TestClassifier_IsGeneric(t *testing.T) {
	classifier := classify.NewClassifier()

	tests := []struct {
		idea     string
		expected bool
	}{
		{"a simple python app", true},
		{"todo list app", false},
		{"simple todo app in python", true},
		{"peer to peer chess engine", false},
		{"distributed vector database written in rust", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.idea, func(t *testing.T) {
			if got := classifier.IsGeneric(tt.idea); got != tt.expected {
				t.Errorf("IsGeneric(%q) = %v, want %v", tt.idea, got, tt.expected)
			}
		})
	}
}
