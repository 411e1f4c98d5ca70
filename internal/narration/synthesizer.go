// Package narration turns exercise voice lines into mp3 audio through a
// gTTS compatible text-to-speech endpoint.
package narration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "https://translate.google.com/translate_tts"
	DefaultLang    = "en"

	// the endpoint refuses longer texts, longer lines are sent in parts
	maxChunkLen = 200

	oneDay      = 24 * 60 * 60
	cacheExpire = oneDay * 7
	megabyte    = 1024 * 1024
	// freecache caps entries at 1/1024 of its size
	cacheSize = 128 * megabyte
)

var ErrEmptyText = errors.New("nothing to narrate")

type Synthesizer struct {
	cache      *freecache.Cache
	baseURL    string
	lang       string
	httpClient *http.Client
}

func NewSynthesizer(baseURL, lang string, httpClient *http.Client) *Synthesizer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lang == "" {
		lang = DefaultLang
	}
	return &Synthesizer{
		cache:      freecache.NewCache(cacheSize),
		baseURL:    baseURL,
		lang:       lang,
		httpClient: httpClient,
	}
}

// Speak returns the mp3 audio for the text.
func (s *Synthesizer) Speak(ctx context.Context, text string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "narration.speak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	cacheKey := []byte(s.lang + "::" + text)
	if audio, err := s.cache.Get(cacheKey); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return audio, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	var audio bytes.Buffer
	chunks := splitText(text, maxChunkLen)
	for i, chunk := range chunks {
		if err := s.fetchChunk(ctx, chunk, i, len(chunks), &audio); err != nil {
			return nil, err
		}
	}

	if err := s.cache.Set(cacheKey, audio.Bytes(), cacheExpire); err != nil {
		log.Errorf("failed to cache narration audio [%d bytes]: %s", audio.Len(), err)
	}

	return audio.Bytes(), nil
}

func (s *Synthesizer) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", chunk)
	params.Set("tl", s.lang)
	params.Set("client", "tw-ob")
	params.Set("total", fmt.Sprintf("%d", total))
	params.Set("idx", fmt.Sprintf("%d", idx))
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(chunk))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts endpoint returned %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read tts response: %w", err)
	}
	return nil
}

// splitText cuts the text at word boundaries into parts of at most maxLen runes.
func splitText(text string, maxLen int) []string {
	var (
		chunks  []string
		current []rune
	)
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > maxLen {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = nil
			}
			chunks = append(chunks, string(w[:maxLen]))
			w = w[maxLen:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= maxLen:
			current = append(append(current, ' '), w...)
		default:
			chunks = append(chunks, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
