package layout

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/invoscan/invoscan/model"
)

// TokenizerConfig holds configuration for token normalization.
type TokenizerConfig struct {
	// PageBreakJump is the upward jump in centerY (in pixels) that signals a
	// page boundary in a concatenated multi-page token stream
	// (default: 1000).
	PageBreakJump float64
}

// DefaultTokenizerConfig returns sensible default configuration.
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{
		PageBreakJump: 1000.0,
	}
}

// Tokenizer normalizes raw OCR tokens into the engine's token form.
type Tokenizer struct {
	config TokenizerConfig
}

// NewTokenizer creates a tokenizer with default configuration.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{config: DefaultTokenizerConfig()}
}

// NewTokenizerWithConfig creates a tokenizer with custom configuration.
func NewTokenizerWithConfig(config TokenizerConfig) *Tokenizer {
	return &Tokenizer{config: config}
}

// Normalize converts raw OCR tokens to normalized tokens sorted by
// (page, centerY, leftX). Tokens with empty text or missing geometry are
// dropped; a missing confidence defaults to 1.0. When the input carries no
// page hints, page breaks are inferred from sharp upward jumps in centerY.
func (t *Tokenizer) Normalize(raw []model.RawToken) []model.Token {
	toks := make([]model.Token, 0, len(raw))
	hinted := false
	for _, r := range raw {
		text := strings.TrimSpace(norm.NFKC.String(r.Text))
		if text == "" || r.Quad.IsZero() {
			continue
		}
		conf := r.Confidence
		if conf <= 0 {
			conf = 1.0
		}
		if conf > 1 {
			conf = 1.0
		}
		if r.Page > 0 {
			hinted = true
		}
		toks = append(toks, model.Token{
			Text:       text,
			Confidence: conf,
			Quad:       r.Quad,
			Page:       r.Page,
		})
	}

	if !hinted {
		t.inferPages(toks)
	}

	sort.SliceStable(toks, func(i, j int) bool {
		if toks[i].Page != toks[j].Page {
			return toks[i].Page < toks[j].Page
		}
		if toks[i].CenterY() != toks[j].CenterY() {
			return toks[i].CenterY() < toks[j].CenterY()
		}
		return toks[i].Left() < toks[j].Left()
	})
	return toks
}

// inferPages walks the stream in recognizer order and increments the page
// index whenever centerY jumps sharply upward, which marks the coordinate
// reset at a page boundary.
func (t *Tokenizer) inferPages(toks []model.Token) {
	page := 0
	prevY := -1.0
	for i := range toks {
		y := toks[i].CenterY()
		if prevY > 0 && y < prevY-t.config.PageBreakJump {
			page++
		}
		toks[i].Page = page
		prevY = y
	}
}
