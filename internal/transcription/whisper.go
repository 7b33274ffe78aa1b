package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/speech-coach/internal/types"
)

const (
	// WhisperProviderName identifies the faster-whisper sidecar in errors and logs
	WhisperProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperTimeout = 120 * time.Second
)

// WhisperConfig configures the faster-whisper HTTP sidecar client.
type WhisperConfig struct {
	URL      string        `json:"url"`
	Model    string        `json:"model,omitempty"`
	Language string        `json:"language,omitempty"`
	Timeout  time.Duration `json:"timeout"`
}

// WhisperProvider transcribes audio through a faster-whisper sidecar.
type WhisperProvider struct {
	cfg    WhisperConfig
	client *http.Client
}

// NewWhisperProvider creates a provider, filling unset config with defaults.
func NewWhisperProvider(cfg WhisperConfig) *WhisperProvider {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &WhisperProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Name returns the provider name.
func (p *WhisperProvider) Name() string { return WhisperProviderName }

// IsAvailable checks if the sidecar answers its health endpoint.
func (p *WhisperProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the audio with word timestamps requested and converts the
// response into a Transcript.
func (p *WhisperProvider) Transcribe(ctx context.Context, req Request) (*types.Transcript, error) {
	audio := req.Audio
	filename := "audio.wav"
	if len(audio) == 0 {
		if req.AudioPath == "" {
			return nil, p.fail("no audio provided", nil)
		}
		data, err := os.ReadFile(req.AudioPath)
		if err != nil {
			return nil, p.fail("read audio file", err)
		}
		audio = data
		filename = filepath.Base(req.AudioPath)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, p.fail("create form file", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, p.fail("write audio data", err)
	}
	_ = writer.WriteField("word_timestamps", "true")
	if p.cfg.Model != "" {
		_ = writer.WriteField("model", p.cfg.Model)
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		return nil, p.fail("close multipart body", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, p.fail("create request", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, p.fail("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, p.fail(resp.Status+": "+strings.TrimSpace(string(body)), nil)
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, p.fail("decode response", err)
	}
	return out.toTranscript(), nil
}

func (p *WhisperProvider) fail(msg string, cause error) error {
	return &ProviderError{Provider: WhisperProviderName, Message: msg, Cause: cause}
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Text       string        `json:"text"`
	Start      float64       `json:"start"`
	End        float64       `json:"end"`
	AvgLogprob float64       `json:"avg_logprob"`
	Words      []whisperWord `json:"words"`
}

type whisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func (r *whisperResponse) toTranscript() *types.Transcript {
	t := &types.Transcript{Text: strings.TrimSpace(r.Text), Words: []types.Word{}}

	segmentTexts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		segmentTexts = append(segmentTexts, strings.TrimSpace(seg.Text))
		if len(seg.Words) > 0 {
			for _, w := range seg.Words {
				t.Words = append(t.Words, types.Word{
					Word:       strings.TrimSpace(w.Word),
					Start:      w.Start,
					End:        w.End,
					Confidence: clampUnit(w.Probability),
				})
			}
			continue
		}
		t.Words = append(t.Words, spreadSegment(seg)...)
	}

	if t.Text == "" {
		t.Text = strings.Join(segmentTexts, " ")
	}

	t.Duration = r.Duration
	if t.Duration <= 0 && len(r.Segments) > 0 {
		t.Duration = r.Segments[len(r.Segments)-1].End
	}
	return t
}

// spreadSegment divides a segment's time evenly across its tokens when the
// sidecar returned no word timestamps.
func spreadSegment(seg whisperSegment) []types.Word {
	tokens := strings.Fields(seg.Text)
	if len(tokens) == 0 {
		return nil
	}
	span := seg.End - seg.Start
	if span < 0 {
		span = 0
	}
	step := span / float64(len(tokens))
	confidence := clampUnit(math.Exp(seg.AvgLogprob))

	words := make([]types.Word, len(tokens))
	for i, tok := range tokens {
		start := seg.Start + step*float64(i)
		words[i] = types.Word{Word: tok, Start: start, End: start + step, Confidence: confidence}
	}
	return words
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
