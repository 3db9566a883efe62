package transcriber

const groqAPIURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	cloudTranscriber
}

func NewGroq(apiKey string) *Groq {
	return &Groq{cloudTranscriber{
		provider: "groq",
		apiURL:   groqAPIURL,
		apiKey:   apiKey,
		model:    "whisper-large-v3-turbo",
		client:   NewTracedClient(groqAPIURL),
	}}
}
