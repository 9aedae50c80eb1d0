package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/invoscan/invoscan/model"
)

// Azure recognizes printed text with the Azure Computer Vision OCR
// endpoint.
type Azure struct {
	client *computervision.BaseClient
}

// NewAzure creates an Azure recognizer for the given endpoint and key.
func NewAzure(endpoint, apiKey string) *Azure {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &Azure{client: &client}
}

// Recognize sends the image to the printed-text OCR endpoint and returns
// word-level tokens with bounding quads.
func (a *Azure) Recognize(ctx context.Context, image []byte) ([]model.RawToken, error) {
	reader := io.NopCloser(bytes.NewReader(image))
	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		reader,
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	return tokensFromResult(result), nil
}

func tokensFromResult(result computervision.OcrResult) []model.RawToken {
	if result.Regions == nil {
		return nil
	}
	var tokens []model.RawToken
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			for _, word := range *line.Words {
				if word.Text == nil || word.BoundingBox == nil {
					continue
				}
				x, y, w, h, ok := parseBox(*word.BoundingBox)
				if !ok {
					continue
				}
				tokens = append(tokens, model.RawToken{
					Text: *word.Text,
					// The legacy OCR endpoint reports no per-word
					// confidence.
					Confidence: 1.0,
					Quad:       model.QuadFromRect(x, y, w, h),
				})
			}
		}
	}
	return tokens
}

// parseBox reads the API's "x,y,width,height" bounding box string.
func parseBox(s string) (x, y, w, h float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 4 {
		return 0, 0, 0, 0, false
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = float64(n)
	}
	return vals[0], vals[1], vals[2], vals[3], true
}
