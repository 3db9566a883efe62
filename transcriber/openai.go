package transcriber

const openaiAPIURL = "https://api.openai.com/v1/audio/transcriptions"

type OpenAI struct {
	cloudTranscriber
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{cloudTranscriber{
		provider: "openai",
		apiURL:   openaiAPIURL,
		apiKey:   apiKey,
		model:    "whisper-1",
		client:   NewTracedClient(openaiAPIURL),
	}}
}
