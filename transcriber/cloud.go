package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/yuemingist/VoiceInk-sub002/encoder"
)

// cloudTranscriber holds what the HTTP providers share: a traced
// client, the endpoint, and the multipart upload + verbose_json
// parsing. Audio goes up as FLAC, which cuts upload size roughly in
// half against WAV without lossy artifacts.
type cloudTranscriber struct {
	provider string
	apiURL   string
	apiKey   string
	model    string
	client   *TracedClient
}

func (c *cloudTranscriber) Name() string { return c.provider }

func (c *cloudTranscriber) Warm(_ context.Context) error {
	c.client.Warm()
	return nil
}

func (c *cloudTranscriber) Close() error { return nil }

type verboseResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text             string  `json:"text"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		AvgLogProb       float64 `json:"avg_logprob"`
		CompressionRatio float64 `json:"compression_ratio"`
		Temperature      float64 `json:"temperature"`
	} `json:"segments"`
}

func (c *cloudTranscriber) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32767
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		pcm[i] = int16(v)
	}
	flacData, err := encoder.EncodeFlac(pcm)
	if err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: fmt.Errorf("encode flac: %w", err)}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.flac")
	if err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: err}
	}
	if _, err := part.Write(flacData); err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: err}
	}

	writer.WriteField("model", c.model)
	writer.WriteField("response_format", "verbose_json")
	if opts.Language != "" {
		writer.WriteField("language", opts.Language)
	}
	if opts.Prompt != "" {
		writer.WriteField("prompt", opts.Prompt)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, &body)
	if err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: err}
	}
	if resp.StatusCode != 200 {
		return Result{}, &TranscriptionError{
			Provider: c.provider,
			Err:      fmt.Errorf("API error %d: %s", resp.StatusCode, string(resp.Body)),
		}
	}

	var vr verboseResponse
	if err := json.Unmarshal(resp.Body, &vr); err != nil {
		return Result{}, &TranscriptionError{Provider: c.provider, Err: fmt.Errorf("parse response: %w", err)}
	}

	res := Result{
		Text:     vr.Text,
		Duration: vr.Duration,
		Metrics:  resp.Metrics,
	}
	if len(vr.Segments) > 0 {
		var logProbSum float64
		for _, seg := range vr.Segments {
			if seg.NoSpeechProb > res.NoSpeechProb {
				res.NoSpeechProb = seg.NoSpeechProb
			}
			logProbSum += seg.AvgLogProb
			res.Segments = append(res.Segments, Segment{
				Text:             seg.Text,
				NoSpeechProb:     seg.NoSpeechProb,
				AvgLogProb:       seg.AvgLogProb,
				CompressionRatio: seg.CompressionRatio,
				Temperature:      seg.Temperature,
				Start:            seg.Start,
				End:              seg.End,
			})
		}
		res.AvgLogProb = logProbSum / float64(len(vr.Segments))
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")
	res.RateLimit = remaining + "/" + limit

	return res, nil
}
