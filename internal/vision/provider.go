package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/richxcame/claimguard/pkg/config"
)

// Request is a single image-plus-instruction prompt
type Request struct {
	Model       string
	Instruction string
	Image       []byte
	MediaType   string
	MaxTokens   int
}

// Provider is a multimodal model backend
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// NewProvider builds the provider selected by cfg.Provider
func NewProvider(cfg config.VisionConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported vision provider %q", cfg.Provider)
	}
}

var supportedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectMediaType sniffs the image format. Anything the model APIs do not
// accept is sent as JPEG
func DetectMediaType(image []byte) string {
	mediaType := http.DetectContentType(image)
	if supportedMediaTypes[mediaType] {
		return mediaType
	}
	return "image/jpeg"
}

func dataURI(mediaType string, image []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
