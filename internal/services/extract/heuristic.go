package extract

import (
	"context"
	"strings"

	"github.com/modelscout/modelscout/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Keyword tables for the deterministic strategy. Matching is a case-folded
// substring scan, so multi-word entries match phrases inside the use case.
var (
	imageInputKeywords = []string{
		"image", "photo", "picture", "screenshot", "ocr", "diagram",
		"chart", "receipt", "scan", "visual",
	}
	audioInputKeywords = []string{
		"audio", "speech", "voice", "transcri", "podcast", "recording",
	}
	videoInputKeywords = []string{
		"video", "footage", "clip",
	}
	fileInputKeywords = []string{
		"pdf", "spreadsheet", "attachment",
	}

	imageOutputKeywords = []string{
		"generate image", "image generation", "text-to-image", "illustration",
	}
	embeddingKeywords = []string{
		"embedding", "semantic search", "vector search", "similarity search",
	}

	largeContextKeywords = []string{
		"book", "novel", "entire codebase", "codebase", "manuscript",
		"long document", "repository",
	}
	mediumContextKeywords = []string{
		"article", "report", "essay", "paper", "chapter",
	}

	budgetKeywords = []string{
		"cheap", "free", "budget", "inexpensive", "low cost",
		"low-cost", "affordable", "cost effective", "cost-effective",
	}

	fastKeywords = []string{
		"fast", "quick", "real-time", "realtime", "low latency",
		"low-latency", "instant", "responsive",
	}
	powerfulKeywords = []string{
		"powerful", "best quality", "highest quality", "smartest",
		"most capable", "state of the art", "state-of-the-art", "complex reasoning",
	}
)

const (
	largeContextTokens  = 128000
	mediumContextTokens = 32000
	budgetPricePerM     = "1"
)

// HeuristicExtractor maps use-case keywords onto constraints with a fixed
// table. Deterministic and free, at the cost of a much coarser read of the
// use case than the generative strategy.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Extract implements Extractor.
func (h *HeuristicExtractor) Extract(_ context.Context, useCase string, requestID string) models.ExtractedConstraints {
	text := strings.ToLower(useCase)

	constraints := models.ExtractedConstraints{
		InputModalities:  []string{"text"},
		OutputModalities: []string{"text"},
		SpeedPreference:  models.SpeedAny,
	}

	if containsAny(text, imageInputKeywords) {
		constraints.InputModalities = append(constraints.InputModalities, "image")
	}
	if containsAny(text, audioInputKeywords) {
		constraints.InputModalities = append(constraints.InputModalities, "audio")
	}
	if containsAny(text, videoInputKeywords) {
		constraints.InputModalities = append(constraints.InputModalities, "video")
	}
	if containsAny(text, fileInputKeywords) {
		constraints.InputModalities = append(constraints.InputModalities, "file")
	}

	wantsEmbeddings := containsAny(text, embeddingKeywords)
	switch {
	case wantsEmbeddings:
		constraints.OutputModalities = []string{"embeddings"}
	case containsAny(text, imageOutputKeywords):
		constraints.OutputModalities = append(constraints.OutputModalities, "image")
	}

	// Embedding and base models are noise for every use case except an
	// explicit embedding request.
	if !wantsEmbeddings {
		constraints.ExcludeKeywords = []string{"embedding", "base"}
	}

	switch {
	case containsAny(text, largeContextKeywords):
		constraints.MinContextLength = largeContextTokens
	case containsAny(text, mediumContextKeywords):
		constraints.MinContextLength = mediumContextTokens
	}

	if containsAny(text, budgetKeywords) {
		constraints.MaxPricePerMillion = budgetPricePerM
	}

	switch {
	case containsAny(text, fastKeywords):
		constraints.SpeedPreference = models.SpeedFast
	case containsAny(text, powerfulKeywords):
		constraints.SpeedPreference = models.SpeedPowerful
	}

	fiberlog.Debugf("[%s] heuristic extraction: inputs=%v outputs=%v min_context=%d max_price=%s",
		requestID, constraints.InputModalities, constraints.OutputModalities,
		constraints.MinContextLength, constraints.MaxPricePerMillion)

	return constraints
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
