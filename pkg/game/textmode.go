package game

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/trivia"
	"github.com/quizcast/quizcast/pkg/tts"
)

// TextGame runs the quiz over a text prompt instead of a live voice
// conversation. When a TTS provider and sink are supplied each
// question is also spoken; speech failures degrade to text only.
type TextGame struct {
	questions []trivia.Question
	provider  tts.Provider // optional
	sink      audioio.Sink // optional, required if provider is set
	logger    *slog.Logger
}

// NewTextGame creates a text mode game.
func NewTextGame(questions []trivia.Question, provider tts.Provider, sink audioio.Sink, logger *slog.Logger) *TextGame {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextGame{
		questions: questions,
		provider:  provider,
		sink:      sink,
		logger:    logger,
	}
}

// Run plays through every question, reading answers from in and
// writing the game to out. Returns the number of correct answers.
func (g *TextGame) Run(ctx context.Context, in io.Reader, out io.Writer) (int, error) {
	if len(g.questions) == 0 {
		return 0, trivia.ErrNoQuestions
	}

	reader := bufio.NewReader(in)
	correct := 0

	for i, q := range g.questions {
		text := formatQuestion(i+1, q)
		fmt.Fprint(out, text)
		g.speak(ctx, spokenQuestion(q))

		answer, err := readAnswer(reader)
		if err != nil {
			return correct, fmt.Errorf("game: read answer: %w", err)
		}

		if isCorrect(q, answer) {
			correct++
			fmt.Fprintf(out, "Correct! %s\n\n", q.Explanation)
			g.speak(ctx, "Correct! "+q.Explanation)
		} else {
			fmt.Fprintf(out, "Wrong, the answer was: %s. %s\n\n", q.CorrectAnswer, q.Explanation)
			g.speak(ctx, "Wrong, the answer was "+q.CorrectAnswer+". "+q.Explanation)
		}
	}

	fmt.Fprintf(out, "Final score: %d/%d\n", correct, len(g.questions))
	g.speak(ctx, fmt.Sprintf("You scored %d out of %d. Thanks for playing!", correct, len(g.questions)))
	return correct, nil
}

// speak synthesizes and plays text when a provider is configured.
// Failures are logged and the game continues silently.
func (g *TextGame) speak(ctx context.Context, text string) {
	if g.provider == nil || g.sink == nil {
		return
	}

	result, err := g.provider.Synthesize(ctx, text)
	if err != nil {
		g.logger.Warn("speech synthesis failed", "error", err)
		return
	}

	chunk := audioio.ChunkFromPCM16(result.Audio, audioio.PlaybackRate)
	if err := g.sink.Write(ctx, chunk); err != nil {
		g.logger.Warn("speech playback failed", "error", err)
		return
	}
	if err := g.sink.Flush(ctx); err != nil {
		g.logger.Warn("speech flush failed", "error", err)
	}
}

// formatQuestion renders one question with lettered options.
func formatQuestion(number int, q trivia.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d: %s\n", number, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "  %c) %s\n", 'A'+i, opt)
	}
	b.WriteString("Your answer: ")
	return b.String()
}

// spokenQuestion renders one question for speech, options included.
func spokenQuestion(q trivia.Question) string {
	var b strings.Builder
	b.WriteString(q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, " %c: %s.", 'A'+i, opt)
	}
	return b.String()
}

func readAnswer(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isCorrect accepts either the option letter (a, B, ...) or the
// answer text itself, case-insensitively.
func isCorrect(q trivia.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}

	if len(answer) == 1 {
		idx := int(strings.ToUpper(answer)[0] - 'A')
		if idx >= 0 && idx < len(q.Options) {
			return strings.EqualFold(strings.TrimSpace(q.Options[idx]), strings.TrimSpace(q.CorrectAnswer))
		}
	}

	return strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer))
}
