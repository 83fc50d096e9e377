package core

import (
	"context"
	"log"
	"time"
)

// FallbackImageURL is returned whenever image generation fails, so a product
// card always ends up with something to show.
const FallbackImageURL = "https://placehold.co/600x400/EFEFEF/333333?text=Image+Not+Available"

// ImageGenerator produces an image reference (data URL or remote URL) for a
// product name. Opaque to the enricher.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, productName string) (string, error)
}

// Enricher wraps an ImageGenerator with the guarantee that enrichment never
// fails: any error, timeout or empty result degrades to the fallback
// placeholder. Enrichments for different messages run independently.
type Enricher struct {
	generator ImageGenerator
	timeout   time.Duration
}

func NewEnricher(generator ImageGenerator) *Enricher {
	return &Enricher{
		generator: generator,
		timeout:   60 * time.Second,
	}
}

// Enrich always returns a non-empty image URL.
func (e *Enricher) Enrich(ctx context.Context, productName string) string {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	imageURL, err := e.generator.GenerateImage(ctx, productName)
	if err != nil {
		log.Printf("Image generation failed for %q, using placeholder: %v", productName, err)
		return FallbackImageURL
	}
	if imageURL == "" {
		log.Printf("Image generation returned no image for %q, using placeholder", productName)
		return FallbackImageURL
	}
	return imageURL
}
