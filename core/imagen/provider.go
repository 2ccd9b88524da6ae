// Package imagen provides the Google Imagen image provider. Image
// generation is a single synchronous call, so it keeps its own small
// HTTP client instead of the submit/poll protocol.
package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mediaforge/config"
	"mediaforge/core/registry"
	"mediaforge/core/utils"
	"mediaforge/logger"
	"mediaforge/model"
)

const Name = "imagen"

// Provider implements image generation via the Imagen predict endpoint.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	outputDir  string
	httpClient *http.Client
}

var _ registry.ImageProvider = (*Provider)(nil)

// New creates the provider from configuration.
func New(cfg *config.Config) *Provider {
	return &Provider{
		baseURL:   cfg.GoogleBaseURL,
		apiKey:    cfg.GoogleAPIKey,
		model:     cfg.ImagenModel,
		outputDir: cfg.OutputDir,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Descriptor returns the static capability record.
func (p *Provider) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{Name: Name}
}

type predictRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
	} `json:"instances"`
	Parameters struct {
		SampleCount int    `json:"sampleCount"`
		AspectRatio string `json:"aspectRatio,omitempty"`
	} `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded []byte `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces an image synchronously. Imagen assigns no
// generation id, so results are not tracked as jobs.
func (p *Provider) Generate(ctx context.Context, req model.ImageRequest) *model.GenerationResult {
	logger.Info("imagen: generating image", logger.String("aspect", req.AspectRatio))

	numImages := req.NumImages
	if numImages <= 0 {
		numImages = 1
	}

	var body predictRequest
	body.Instances = append(body.Instances, struct {
		Prompt string `json:"prompt"`
	}{Prompt: req.Prompt})
	body.Parameters.SampleCount = numImages
	body.Parameters.AspectRatio = req.AspectRatio

	payload, err := json.Marshal(body)
	if err != nil {
		return model.Failure(Name, model.ContentImage, err.Error())
	}

	url := fmt.Sprintf("%s/models/%s:predict", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return model.Failure(Name, model.ContentImage, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return model.Failure(Name, model.ContentImage, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Failure(Name, model.ContentImage,
			fmt.Sprintf("imagen request failed: status %d: %s", resp.StatusCode, respBody))
	}

	var decoded predictResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return model.Failure(Name, model.ContentImage, fmt.Sprintf("decode response: %v", err))
	}
	if decoded.Error != nil {
		return model.Failure(Name, model.ContentImage, decoded.Error.Message)
	}
	if len(decoded.Predictions) == 0 {
		return model.Failure(Name, model.ContentImage, "no images generated")
	}

	imageData := decoded.Predictions[0].BytesBase64Encoded

	path := req.OutputPath
	if path == "" {
		path = utils.DefaultOutputPath(p.outputDir, model.ContentImage, Name, ".png")
	}
	if err := utils.SaveFile(path, imageData); err != nil {
		return model.Failure(Name, model.ContentImage, err.Error())
	}

	logger.Info("imagen: image saved", logger.String("path", path), logger.Int("bytes", len(imageData)))

	return &model.GenerationResult{
		Success:     true,
		Provider:    Name,
		ContentType: model.ContentImage,
		FilePath:    path,
		Data:        imageData,
		Metadata: map[string]any{
			"model":        p.model,
			"aspect_ratio": req.AspectRatio,
			"num_images":   numImages,
		},
	}
}
