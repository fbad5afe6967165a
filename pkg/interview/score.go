package interview

import (
	"regexp"
	"strconv"
	"strings"
)

// ScoreEntry is one scored answer, tagged with the stage that produced it.
// Entries are append-only and never mutated.
type ScoreEntry struct {
	Value float64
	Stage Stage
}

// Breakdown is the final score summary. Total weights technical answers at
// 0.6 and behavioral at 0.4 when both groups exist; otherwise it falls back
// to the plain average.
type Breakdown struct {
	Total         float64 `json:"total_score"`
	Average       float64 `json:"average_score"`
	TechnicalAvg  float64 `json:"technical_avg"`
	BehavioralAvg float64 `json:"behavioral_avg"`
}

const (
	fallbackBaseScore  = 50.0
	fallbackKeywordCap = 30.0
)

// Keywords indicating concrete technical or behavioral substance in an
// answer. Matched as whole words, case-insensitively.
var scoreKeywords = map[string]struct{}{
	"project":     {},
	"team":        {},
	"developed":   {},
	"implemented": {},
	"designed":    {},
	"experience":  {},
	"used":        {},
	"worked":      {},
	"built":       {},
	"created":     {},
}

var firstInteger = regexp.MustCompile(`\d+`)

// parseScore extracts the first integer from a model reply and clamps it to
// [0,100]. ok is false when the reply contains no digits.
func parseScore(reply string) (float64, bool) {
	match := firstInteger.FindString(reply)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return clamp(n, 0, 100), true
}

// FallbackScore is the deterministic heuristic used when model scoring is
// unavailable: base 50, +20 for answers of 20-150 words (+10 for at least
// 10 words otherwise), +5 per keyword occurrence capped at 30, clamped
// to 100. It is pure so it can be tested without any collaborator.
func FallbackScore(transcript string) float64 {
	score := fallbackBaseScore
	words := strings.Fields(transcript)

	switch {
	case len(words) >= 20 && len(words) <= 150:
		score += 20
	case len(words) >= 10:
		score += 10
	}

	var keywordBonus float64
	for _, w := range words {
		w = strings.Trim(strings.ToLower(w), ".,!?;:\"'")
		if _, ok := scoreKeywords[w]; ok {
			keywordBonus += 5
		}
	}
	if keywordBonus > fallbackKeywordCap {
		keywordBonus = fallbackKeywordCap
	}
	score += keywordBonus

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
