package annotate

import (
	"sort"
	"strings"
)

// Intent categories. General is the tie/no-signal fallback.
const (
	IntentAnimation   = "animation"
	IntentInteraction = "interaction"
	IntentBehavior    = "behavior"
	IntentStyle       = "style"
	IntentGeneral     = "general"
)

const (
	baseConfidence     = 0.3
	perKeywordBonus    = 0.15
	imperativeBonus    = 0.2
	actionableFloor    = 0.3
	noSignalConfidence = 0.1
)

// intentVocabulary partitions the keyword taxonomy by category. Scoring
// sums hits per category over the lowercased message.
var intentVocabulary = map[string][]string{
	IntentAnimation: {
		"animate", "animation", "bounce", "transition", "fade", "slide",
		"spin", "pulse", "motion", "ease",
	},
	IntentInteraction: {
		"click", "tap", "press", "drag", "swipe", "scroll", "select",
		"keyboard", "gesture",
	},
	IntentBehavior: {
		"toggle", "open", "close", "show", "hide", "enable", "disable",
		"load", "submit", "navigate", "redirect", "validate",
	},
	IntentStyle: {
		"color", "colour", "font", "size", "spacing", "padding", "margin",
		"align", "bold", "radius", "shadow", "background", "border",
		"contrast",
	},
}

var imperativeWords = []string{"should", "must", "need"}

// Intent is the classification of one annotation message.
type Intent struct {
	Type       string   `json:"type"`
	Keywords   []string `json:"keywords,omitempty"`
	Confidence float64  `json:"confidence"`
	Actionable bool     `json:"actionable"`
}

// Classify scores the message against the keyword taxonomy. The category
// with the highest hit count wins; ties resolve to general. Imperative
// language adds a fixed confidence bonus; confidence is clamped to [0, 1]
// and actionable means confidence >= 0.3.
func Classify(message string) Intent {
	lowered := strings.ToLower(message)

	scores := make(map[string]int, len(intentVocabulary))
	hits := make(map[string][]string, len(intentVocabulary))
	for category, keywords := range intentVocabulary {
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				scores[category]++
				hits[category] = append(hits[category], keyword)
			}
		}
	}

	winner, bestScore := IntentGeneral, 0
	tied := false
	for _, category := range sortedCategories(scores) {
		score := scores[category]
		switch {
		case score > bestScore:
			winner, bestScore = category, score
			tied = false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if tied || bestScore == 0 {
		winner = IntentGeneral
	}

	confidence := noSignalConfidence
	var keywords []string
	if winner != IntentGeneral {
		confidence = baseConfidence + perKeywordBonus*float64(bestScore-1)
		keywords = hits[winner]
		sort.Strings(keywords)
	}
	for _, word := range imperativeWords {
		if strings.Contains(lowered, word) {
			confidence += imperativeBonus
			break
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	return Intent{
		Type:       winner,
		Keywords:   keywords,
		Confidence: confidence,
		Actionable: confidence >= actionableFloor,
	}
}

func sortedCategories(scores map[string]int) []string {
	categories := make([]string, 0, len(scores))
	for category := range scores {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
