package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
)

// ImageResult is the generated featured image for an article.
type ImageResult struct {
	URL    string
	Prompt string
}

// ImageGenerator requests a featured image for a keyword. Implementations
// must treat failures as non-fatal to the blog itself.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, keyword string) (ImageResult, error)
}

// ImageClient calls an OpenAI-compatible image generation endpoint.
type ImageClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewImageClient builds a client from the image API config section.
func NewImageClient(cfg config.ImageAPIConfig) *ImageClient {
	return &ImageClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var _ ImageGenerator = (*ImageClient)(nil)

// imageScenes maps keyword categories to the photographic scene used in
// the image prompt. Matched by substring, first hit wins.
var imageScenes = []struct {
	match string
	scene string
}{
	{"sleep", "a serene bedroom at dusk with soft warm lighting and a person resting peacefully"},
	{"cbd", "natural hemp leaves and a small amber glass dropper bottle on a light wooden table"},
	{"anxiety", "a calm meditation space with plants, natural light and a person breathing deeply"},
	{"pain", "a person gently stretching in a bright physiotherapy studio"},
}

const defaultImageScene = "a bright modern wellness setting with natural materials and soft daylight"

// imagePrompt builds the scene prompt for a keyword.
func imagePrompt(keyword string) string {
	scene := defaultImageScene
	lower := strings.ToLower(keyword)
	for _, s := range imageScenes {
		if strings.Contains(lower, s.match) {
			scene = s.scene
			break
		}
	}
	return fmt.Sprintf("Professional lifestyle photograph of %s, related to %s. High resolution, editorial style, no text or logos.", scene, keyword)
}

// GenerateImage posts an image generation request and returns the first
// image URL. Callers log and continue on error; a missing image never
// fails a blog.
func (c *ImageClient) GenerateImage(ctx context.Context, keyword string) (ImageResult, error) {
	prompt := imagePrompt(keyword)

	body, err := json.Marshal(map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"n":      1,
		"size":   "1024x1024",
	})
	if err != nil {
		return ImageResult{}, fmt.Errorf("marshal image payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ImageResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ImageResult{}, fmt.Errorf("generate image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ImageResult{}, fmt.Errorf("image api error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ImageResult{}, fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return ImageResult{}, fmt.Errorf("image api returned no images")
	}

	return ImageResult{URL: parsed.Data[0].URL, Prompt: prompt}, nil
}
