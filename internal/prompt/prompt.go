// Package prompt composes generation instructions from enumerated profile
// options. Composition is pure string assembly: no I/O, deterministic for a
// given (subject, context, profile) triple, and independently testable.
//
// A rendered prompt is the concatenation of three independently-varying
// blocks: persona (narrative mode), tone (language register) and output
// format (audience). The subject and the retrieved context narrative are
// interpolated verbatim, each exactly once.
package prompt

import (
	"fmt"
	"strings"
)

// Audience selects the output-formatting block.
type Audience int

const (
	// AudienceWeb allows rich markup, LaTeX math and [IMAGE: ...] tags.
	AudienceWeb Audience = iota

	// AudienceWhatsApp forbids LaTeX and uses chat-client conventions.
	AudienceWhatsApp
)

// Tone selects the language register block.
type Tone int

const (
	// ToneStandard is plain clear English.
	ToneStandard Tone = iota

	// TonePidgin sprinkles Nigerian Pidgin expressions into the reply.
	TonePidgin
)

// Narrative selects the persona block.
type Narrative int

const (
	// NarrativeTutor is the direct explanatory science-tutor persona.
	NarrativeTutor Narrative = iota

	// NarrativeGriot wraps the explanation in a short folktale.
	NarrativeGriot
)

// Profile bundles the three options governing composition and
// post-processing. Supplied by the caller per request; pure configuration.
type Profile struct {
	Audience  Audience
	Tone      Tone
	Narrative Narrative
}

// ParseAudience maps a request string to an Audience. Unknown values
// default to web.
func ParseAudience(s string) Audience {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whatsapp", "messaging", "chat":
		return AudienceWhatsApp
	default:
		return AudienceWeb
	}
}

// ParseTone maps a request string to a Tone. Unknown values default to
// standard English.
func ParseTone(s string) Tone {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pidgin", "vernacular":
		return TonePidgin
	default:
		return ToneStandard
	}
}

// ParseNarrative maps a request string to a Narrative. Unknown values
// default to the tutor persona.
func ParseNarrative(s string) Narrative {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "griot", "story", "storyteller":
		return NarrativeGriot
	default:
		return NarrativeTutor
	}
}

const personaTutor = `You are a Nigerian science tutor. You explain things clearly and structured, and you ground every explanation in the lived experience of your students. Use the context below if it is relevant to the topic.`

const personaGriot = `You are a village Griot, a master storyteller. Teach through a short folktale: use stock characters like Tortoise the trickster, Anansi, or the wise old woman, set the tale in a village or market, and make the scientific concept the engine of the plot. Open with the traditional call "Story, story!" and close by explicitly linking the tale back to the concept. Use the context below if it is relevant to the topic.`

const toneStandard = `Write in clear, standard English suitable for a secondary school student.`

const tonePidgin = `Write with warm Nigerian Pidgin flavour: sprinkle in expressions like "How far", "Oya", "No wahala", "Abeg" and "Well done o" where they fit naturally, while keeping the science accurate.`

const formatWeb = `FORMATTING:
1. Use **Bold** for key terms.
2. Use bullet points for steps or lists.
3. Use LaTeX for math (e.g. $E=mc^2$).
4. You may insert [IMAGE: short description] exactly where an illustration would help.
5. Keep the explanation engaging but concise (under 150 words).`

const formatWhatsApp = `FORMATTING:
1. No LaTeX or special math markup; write formulas in plain text (e.g. V = I x R).
2. Emphasise key terms with *single asterisks*.
3. Open with one fitting emoji.
4. Use dashes (-) for lists.
5. Keep it short and friendly (under 100 words).`

// Build renders the generation prompt for a subject, a retrieved context
// narrative and a profile. The subject and narrative each appear exactly
// once in the output.
func Build(subject, contextNarrative string, p Profile) string {
	var sb strings.Builder

	switch p.Narrative {
	case NarrativeGriot:
		sb.WriteString(personaGriot)
	default:
		sb.WriteString(personaTutor)
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "The student wants to know about: %s\n\n", subject)
	fmt.Fprintf(&sb, "STRICTLY use this local context to explain it:\n%s\n\n", contextNarrative)

	switch p.Tone {
	case TonePidgin:
		sb.WriteString(tonePidgin)
	default:
		sb.WriteString(toneStandard)
	}
	sb.WriteString("\n\n")

	switch p.Audience {
	case AudienceWhatsApp:
		sb.WriteString(formatWhatsApp)
	default:
		sb.WriteString(formatWeb)
	}

	return sb.String()
}

const quizInstructions = `Create a quiz to test understanding of the topic above.

RULES:
1. Exactly 5 multiple-choice questions.
2. Each question has exactly 3 options labeled A), B) and C).
3. After each question's options, write "Answer: " followed by the correct letter.
4. If the context names a specific local metaphor, at least 2 of the 5 questions must reference that metaphor.
5. Output only the questions, options and answers in this exact format:

Q1. <question text>
A) <option>
B) <option>
C) <option>
Answer: <letter>`

// BuildQuiz renders the quiz-generation prompt. The output grammar is a
// contract for consumers; the service itself never parses the model's
// quiz text.
func BuildQuiz(subject, contextNarrative string) string {
	var sb strings.Builder

	sb.WriteString("You are a Nigerian science tutor preparing a quick knowledge check.\n\n")
	fmt.Fprintf(&sb, "The topic is: %s\n\n", subject)
	fmt.Fprintf(&sb, "Local context for the quiz:\n%s\n\n", contextNarrative)
	sb.WriteString(quizInstructions)

	return sb.String()
}
