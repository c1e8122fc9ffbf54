package game

import (
	"strconv"
	"strings"
	"testing"
)

func TestBuildInstructions(t *testing.T) {
	got := BuildInstructions("", testQuestions)

	if !strings.HasPrefix(got, DefaultPersona) {
		t.Error("default persona missing")
	}
	for _, q := range testQuestions {
		if !strings.Contains(got, q.Question) {
			t.Errorf("question %q not embedded", q.Question)
		}
		if !strings.Contains(got, q.CorrectAnswer) {
			t.Errorf("answer %q not embedded", q.CorrectAnswer)
		}
	}
	if !strings.Contains(got, "Ask only the "+strconv.Itoa(len(testQuestions))) {
		t.Error("question count rule missing")
	}
}

func TestBuildInstructionsCustomPersona(t *testing.T) {
	got := BuildInstructions("You are a dry, sarcastic host.", testQuestions)

	if !strings.HasPrefix(got, "You are a dry, sarcastic host.") {
		t.Error("custom persona not used")
	}
	if strings.Contains(got, DefaultPersona) {
		t.Error("default persona leaked in")
	}
}
