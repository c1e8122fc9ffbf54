package live

// Wire types for the Gemini Live BidiGenerateContent protocol.
// Outbound audio travels as base64 PCM16 inline data with an explicit
// rate in the MIME type; inbound audio arrives as serverContent model
// turns, with an interrupted flag when the user spoke over the model.

// setupMessage is the first client message on a new connection.
type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model             string            `json:"model"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *contentPayload   `json:"systemInstruction,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type contentPayload struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// realtimeInputMessage carries one encoded microphone frame.
type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []inlineData `json:"mediaChunks"`
}

// serverMessage is the union of inbound message shapes we care about.
// Unknown fields are ignored.
type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	TurnComplete bool            `json:"turnComplete,omitempty"`
	Interrupted  bool            `json:"interrupted,omitempty"`
	ModelTurn    *contentPayload `json:"modelTurn,omitempty"`
}

// captureMimeType is the MIME type for outbound microphone audio.
const captureMimeType = "audio/pcm;rate=16000"

// Fragment is one unit of decoded response audio received from the
// live endpoint, plus turn metadata.
type Fragment struct {
	// Audio is raw PCM16 little-endian at the playback rate (24kHz).
	// May be empty for pure metadata messages.
	Audio []byte

	// Interrupted reports that the user started speaking while this
	// turn was still playing; in-flight audio must be discarded.
	Interrupted bool

	// TurnComplete reports that the model finished its turn.
	TurnComplete bool
}
