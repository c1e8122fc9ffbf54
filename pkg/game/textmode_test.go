package game

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/trivia"
	"github.com/quizcast/quizcast/pkg/tts"
)

func TestTextGameRun(t *testing.T) {
	g := NewTextGame(testQuestions, nil, nil, nil)

	// First answered by letter (correct), second by text (wrong).
	in := strings.NewReader("B\nsix\n")
	var out bytes.Buffer

	score, err := g.Run(context.Background(), in, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}

	text := out.String()
	if !strings.Contains(text, "Correct!") {
		t.Error("output missing the correct acknowledgment")
	}
	if !strings.Contains(text, "Wrong, the answer was: Eight") {
		t.Error("output missing the wrong-answer reveal")
	}
	if !strings.Contains(text, "Final score: 1/2") {
		t.Error("output missing the final score")
	}
}

func TestTextGameSpeaks(t *testing.T) {
	provider := tts.NewMock()
	sink := audioio.NewMockSink(audioio.DefaultPlaybackConfig(), nil)
	if err := sink.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	g := NewTextGame(testQuestions[:1], provider, sink, nil)
	in := strings.NewReader("blue\n")
	var out bytes.Buffer

	if _, err := g.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Question, verdict and wrap-up are all spoken.
	texts := provider.Texts()
	if len(texts) != 3 {
		t.Fatalf("spoke %d times, want 3: %v", len(texts), texts)
	}
	if !strings.Contains(texts[0], testQuestions[0].Question) {
		t.Errorf("spoken question = %q", texts[0])
	}
	if len(sink.Written()) != 3 {
		t.Errorf("sink received %d chunks, want 3", len(sink.Written()))
	}
}

func TestTextGameSpeechFailureIsNotFatal(t *testing.T) {
	provider := tts.NewMock()
	provider.Err = context.DeadlineExceeded
	sink := audioio.NewMockSink(audioio.DefaultPlaybackConfig(), nil)
	sink.Start(context.Background())

	g := NewTextGame(testQuestions[:1], provider, sink, nil)
	in := strings.NewReader("A\n")
	var out bytes.Buffer

	if _, err := g.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestTextGameEmptyQuestions(t *testing.T) {
	g := NewTextGame(nil, nil, nil, nil)
	if _, err := g.Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}); err != trivia.ErrNoQuestions {
		t.Errorf("err = %v, want ErrNoQuestions", err)
	}
}

func TestIsCorrect(t *testing.T) {
	q := testQuestions[0] // answer: Blue, option B

	tests := []struct {
		answer string
		want   bool
	}{
		{"B", true},
		{"b", true},
		{"Blue", true},
		{"blue", true},
		{" blue ", true},
		{"A", false},
		{"Green", false},
		{"", false},
		{"Z", false},
	}

	for _, tt := range tests {
		if got := isCorrect(q, tt.answer); got != tt.want {
			t.Errorf("isCorrect(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
