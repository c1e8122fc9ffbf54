package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizcast/quizcast/pkg/trivia"
)

// DefaultPersona is the host persona used when the caller supplies
// none.
const DefaultPersona = "You are an enthusiastic trivia game show host. " +
	"Keep your energy high, react to answers with short quips, and keep " +
	"the game moving briskly."

// BuildInstructions renders the system instruction for a live host
// session: the persona plus the authoritative question set, embedded
// verbatim. The host must ask exactly these questions and never
// invent its own.
func BuildInstructions(persona string, questions []trivia.Question) string {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}

	// Questions travel as JSON so option order and answer text
	// survive untouched.
	encoded, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nHost a quiz using EXACTLY these questions, in order:\n\n")
	b.Write(encoded)
	b.WriteString(fmt.Sprintf(`

Rules:
- Ask only the %d questions above. Never invent, rephrase into new, or add questions.
- Read each question and all its options aloud, then wait for the player's answer.
- Tell the player whether they were right, give the explanation, then move on.
- After the last question, give a short wrap-up and say goodbye.`, len(questions)))

	return b.String()
}
