package dispatch

import (
	"fmt"
	"strings"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// Decision is the result of classifying one request: the constructed
// request value, the resolved tier descriptor, and a human-readable
// justification. Classification is deterministic; identical text always
// produces an identical decision.
type Decision struct {
	Request       models.Request
	Descriptor    TierDescriptor
	Justification string
}

// Classifier scores request text and selects an execution tier. It is a
// pure function of its input: no I/O, no randomness, no mutable state.
type Classifier struct {
	reg *Registry
}

// NewClassifier creates a Classifier backed by the given registry.
func NewClassifier(reg *Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify scores the text and selects a tier.
//
// Scoring: a length band (+1 over 20 words, +2 over 50, +3 over 100, highest
// band only), one point per matching complexity category, two points for
// document-creation patterns, and one point for fund/lending vocabulary.
// A speed keyword short-circuits everything: fast tier, score zero.
//
// Selection favors speed on ties, routes document requests to the document
// tier even when short, and keeps all but the worst cases off the capable
// tier because it is the slowest.
func (c *Classifier) Classify(text string) Decision {
	norm := strings.ToLower(strings.TrimSpace(text))
	wordList := strings.Fields(norm)
	wc := len(wordList)
	th := c.reg.Thresholds()
	kw := c.reg.Keywords()

	// Speed override takes absolute priority, including over document intent.
	if matched := matchKeyword(norm, wordList, kw.Speed); matched != "" {
		req := models.Request{
			Text:           text,
			WordCount:      wc,
			HasSpeedIntent: true,
		}
		return Decision{
			Request:       req,
			Descriptor:    c.reg.Fast(),
			Justification: fmt.Sprintf("speed keyword %q, taking the fast tier", matched),
		}
	}

	score := 0
	switch {
	case wc > th.Band3:
		score = 3
	case wc > th.Band2:
		score = 2
	case wc > th.Band1:
		score = 1
	}

	var matchedCategories []string
	for _, cat := range kw.Patterns {
		if matchKeyword(norm, wordList, cat.Terms) != "" {
			score++
			matchedCategories = append(matchedCategories, cat.Name)
		}
	}

	docIntent := matchKeyword(norm, wordList, kw.DocumentVerbs) != "" &&
		matchKeyword(norm, wordList, kw.DocumentNouns) != ""
	if docIntent {
		score += 2
	}

	domainIntent := matchKeyword(norm, wordList, kw.Domain) != ""
	if domainIntent {
		score++
	}

	req := models.Request{
		Text:              text,
		WordCount:         wc,
		ComplexityScore:   score,
		HasDocumentIntent: docIntent,
		HasDomainIntent:   domainIntent,
	}

	var desc TierDescriptor
	var justification string
	switch {
	case docIntent:
		// Document requests never route to the fast tier, even when short.
		large := wc > th.DocLargeWordCount || score > th.DocLargeScore
		desc = c.reg.Document(large)
		budget := "standard"
		if large {
			budget = "extended"
		}
		justification = fmt.Sprintf("document request (%d words, score %d), document tier with %s budget", wc, score, budget)

	case wc <= th.LowWordCount || score == 0:
		desc = c.reg.Fast()
		justification = fmt.Sprintf("short request (%d words, score %d), fast tier", wc, score)

	case wc <= th.MidWordCount || score <= 2:
		desc = c.reg.Balanced()
		justification = fmt.Sprintf("moderate request (%d words, score %d), balanced tier", wc, score)

	case score <= th.AvoidCapableCeiling:
		desc = c.reg.BalancedComplex()
		justification = fmt.Sprintf("complex request (score %d), balanced tier with elevated reasoning", score)

	default:
		desc = c.reg.Capable()
		justification = fmt.Sprintf("demanding request (%d words, score %d, categories %s), capable tier", wc, score, strings.Join(matchedCategories, "+"))
	}

	return Decision{Request: req, Descriptor: desc, Justification: justification}
}

// matchKeyword returns the first keyword found in the text, or "". Multi-word
// keywords match as substrings of the normalized text; single words must
// match a whole token so that short keywords like "hi" do not fire inside
// longer words.
func matchKeyword(norm string, words []string, keywords []string) string {
	for _, k := range keywords {
		if strings.ContainsRune(k, ' ') {
			if strings.Contains(norm, k) {
				return k
			}
			continue
		}
		for _, w := range words {
			if strings.Trim(w, ".,;:!?\"'()[]{}") == k {
				return k
			}
		}
	}
	return ""
}
