// Package questionbank loads the interview question catalog served by the
// API and used to resolve question ids on evaluation requests.
package questionbank

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// Bank holds the loaded questions with id lookup.
type Bank struct {
	questions []domain.Question
	byID      map[string]domain.Question
}

type file struct {
	Questions []domain.Question `yaml:"questions"`
}

// Load reads the YAML catalog at path. Every entry needs an id, question
// text, and ideal answer; ids must be unique.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // Path comes from service configuration.
	if err != nil {
		return nil, fmt.Errorf("op=questionbank.Load: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("op=questionbank.Load: parse %s: %w", path, err)
	}
	return New(f.Questions)
}

// New builds a Bank from already-parsed questions.
func New(questions []domain.Question) (*Bank, error) {
	byID := make(map[string]domain.Question, len(questions))
	for i, q := range questions {
		q.ID = strings.TrimSpace(q.ID)
		q.Question = strings.TrimSpace(q.Question)
		q.IdealAnswer = strings.TrimSpace(q.IdealAnswer)
		if q.ID == "" || q.Question == "" || q.IdealAnswer == "" {
			return nil, fmt.Errorf("op=questionbank.New: entry %d: id, question, and ideal_answer are required", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("op=questionbank.New: duplicate question id %q", q.ID)
		}
		byID[q.ID] = q
		questions[i] = q
	}
	return &Bank{questions: questions, byID: byID}, nil
}

// All returns every question in catalog order.
func (b *Bank) All() []domain.Question {
	return b.questions
}

// Get resolves a question by id.
func (b *Bank) Get(id string) (domain.Question, error) {
	q, ok := b.byID[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: question %q", domain.ErrNotFound, id)
	}
	return q, nil
}

// Len reports the catalog size.
func (b *Bank) Len() int { return len(b.questions) }
