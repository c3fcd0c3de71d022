package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient provides OCR and image blending through the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	ocrModel   string
	blendModel string
}

// NewGeminiClient creates a Gemini client for the given models.
func NewGeminiClient(ctx context.Context, apiKey, ocrModel, blendModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		ocrModel:   ocrModel,
		blendModel: blendModel,
	}, nil
}

const ocrPrompt = `Read all text visible in this image. Respond with a JSON array ` +
	`of strings, one per distinct piece of text, in reading order. ` +
	`Respond with an empty array [] when the image contains no readable text.`

// RecognizeText extracts visible text fragments from an image. An empty
// slice means the image contains no readable text.
func (g *GeminiClient) RecognizeText(ctx context.Context, imageData []byte) ([]string, error) {
	// Resize to cut token costs, OCR quality is fine at 800px.
	resized, err := ResizeImage(imageData, 800)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: ocrPrompt},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, g.ocrModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	content := result.Text()
	if content == "" {
		return nil, errors.New("no response from Gemini")
	}

	var fragments []string
	if err := json.Unmarshal([]byte(content), &fragments); err != nil {
		return nil, fmt.Errorf("failed to parse OCR JSON: %w (response: %s)", err, content)
	}

	return fragments, nil
}

// Blend generates a new image combining the text prompt with the source
// image, used to build fused search queries.
func (g *GeminiClient) Blend(ctx context.Context, prompt string, imageData []byte) ([]byte, error) {
	resized, err := ResizeImage(imageData, 800)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.blendModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, errors.New("no image in Gemini response")
}

// Verify interface compliance
var _ Recognizer = (*GeminiClient)(nil)
var _ ImageGenerator = (*GeminiClient)(nil)
