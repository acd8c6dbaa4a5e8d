package relay

// Client-facing JSON payloads. Audio metadata and the buffer warnings
// live in pkg/audio next to the buffer that produces them.

// Sentinel text frames recognized on the inbound path.
const (
	signalClientAudioReady = "CLIENT_AUDIO_READY"
	signalSendTestAudio    = "SEND_TEST_AUDIO_PLEASE"
)

// testAudioPrompt replaces the test-audio sentinel before forwarding.
const testAudioPrompt = "Please say a short greeting so I can verify my speaker setup is working."

type controlMessage struct {
	Type   string `json:"type"`
	Signal string `json:"signal"`
}

func serverReady() controlMessage {
	return controlMessage{Type: "control", Signal: "server_ready"}
}

// playbackState precedes every live audio delivery so the client can
// open its playback pipeline before bytes arrive.
type playbackState struct {
	Type              string `json:"type"`
	Playing           bool   `json:"playing"`
	Sequence          uint64 `json:"sequence"`
	CorrelationID     string `json:"correlation_id"`
	VADShouldActivate bool   `json:"vad_should_activate"`
}

type interruptPlayback struct {
	Type string `json:"type"`
}

func interruptMessage() interruptPlayback {
	return interruptPlayback{Type: "interrupt_playback"}
}

// transcriptionUpdate streams utterance text to the client, one update
// per fragment plus a final one at the utterance boundary.
type transcriptionUpdate struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Sender  string `json:"sender"`
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
}

const (
	senderUser  = "user"
	senderModel = "model"

	typeUserTranscription = "user_transcription_update"
	typeModelResponse     = "model_response_update"
)

// upstreamErrorPrefix marks plain-text error frames relayed from the
// assistant stream.
const upstreamErrorPrefix = "[ERROR_FROM_GEMINI]: "
