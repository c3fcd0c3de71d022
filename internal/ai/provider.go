// Package ai wraps the external model providers. Each provider is a
// pure function of its input bytes: embedding the same image twice
// yields the same vector. Construct each client once at startup and
// pass it to every component that needs it.
package ai

import "context"

// MultimodalEmbedder embeds images and text into one shared vector
// space, so a text query can be compared against image vectors.
type MultimodalEmbedder interface {
	EmbedImage(ctx context.Context, imageData []byte) ([]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// TextEmbedder embeds text into the text-only vector space.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Recognizer extracts visible text from an image. An empty slice means
// the image contains no readable text.
type Recognizer interface {
	RecognizeText(ctx context.Context, imageData []byte) ([]string, error)
}

// ImageGenerator produces a new image from a text prompt and a source
// image, used for fused text-and-image search queries.
type ImageGenerator interface {
	Blend(ctx context.Context, prompt string, imageData []byte) ([]byte, error)
}
