// Package trivia generates quiz question sets with the Gemini
// generateContent API. The resulting questions are the authoritative
// set handed to the game: the live host is instructed to ask exactly
// these and nothing else.
package trivia

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoQuestions is returned when the model response contains no
// usable questions.
var ErrNoQuestions = errors.New("trivia: no questions in response")

// Question is one multiple-choice quiz question.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Validate checks that the question is playable: it has text, at
// least two options, and a correct answer that is one of the options.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("trivia: question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("trivia: question %q has %d options, need at least 2", q.Question, len(q.Options))
	}
	for _, opt := range q.Options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(q.CorrectAnswer)) {
			return nil
		}
	}
	return fmt.Errorf("trivia: correct answer %q is not among the options", q.CorrectAnswer)
}

// ValidateSet checks every question in a set.
func ValidateSet(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
