// Package dispatch classifies natural-language requests by estimated
// complexity, routes them to an execution tier, races the backend call
// against the tier's timeout, and degrades through a fallback cascade when
// the primary call fails.
package dispatch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// Model identifiers for the default tier table.
const (
	// ModelHaiku is the lightweight, fast model for simple requests.
	ModelHaiku = "claude-3-5-haiku-20241022"
	// ModelSonnet is the balanced model for standard work.
	ModelSonnet = "claude-sonnet-4-20250514"
	// ModelOpus is the most capable model for the hardest requests.
	ModelOpus = "claude-opus-4-5-20251101"
)

// TierDescriptor is one cost/capability point on the dispatch spectrum.
// Descriptors are values: overriding a field produces a new descriptor and
// never alters the registry.
type TierDescriptor struct {
	Name      models.Tier
	Model     string
	Reasoning models.ReasoningEffort
	Verbosity models.Verbosity
	MaxTokens int
	Timeout   time.Duration
}

// Thresholds holds the word-count and score cutoffs used by the classifier.
// The enhanced revision's 15/50 word cutoffs are canonical here.
type Thresholds struct {
	// LowWordCount routes requests at or below it to the fast tier.
	LowWordCount int
	// MidWordCount routes requests at or below it to the balanced tier.
	MidWordCount int
	// Length score bands, cumulative thresholds with only the highest
	// applicable band counting: >Band1 scores 1, >Band2 scores 2, >Band3
	// scores 3.
	Band1, Band2, Band3 int
	// AvoidCapableCeiling keeps scores at or below it on the balanced tier
	// with elevated reasoning. The capable tier is the slowest and is
	// reserved for scores above this ceiling.
	AvoidCapableCeiling int
	// DocLargeWordCount and DocLargeScore decide when a document request
	// gets the enlarged document budget instead of the standard one.
	DocLargeWordCount int
	DocLargeScore     int
}

// PatternCategory is one complexity-indicating phrase category. Each
// category that matches contributes one point, independently of the others.
type PatternCategory struct {
	Name  string
	Terms []string
}

// Keywords holds the keyword lists used by the classifier.
type Keywords struct {
	// Speed keywords trigger the absolute fast-path override.
	Speed []string
	// DocumentVerbs combined with DocumentNouns mark document-creation
	// requests.
	DocumentVerbs []string
	DocumentNouns []string
	// Domain is fund/lending vocabulary worth one point.
	Domain []string
	// Patterns are the complexity-indicating categories, one point each.
	Patterns []PatternCategory
}

// Registry is the ordered, read-only tier table plus the classifier
// constants. It is constructed once at process start and never mutated;
// accessors return copies.
type Registry struct {
	tiers      []TierDescriptor // fast, balanced, capable, in that order
	document   TierDescriptor
	docLarge   TierDescriptor
	thresholds Thresholds
	keywords   Keywords
}

// RegistryConfig is the explicit construction input for a Registry.
// Zero-value fields fall back to the defaults.
type RegistryConfig struct {
	Fast          *TierDescriptor
	Balanced      *TierDescriptor
	Capable       *TierDescriptor
	Document      *TierDescriptor
	DocumentLarge *TierDescriptor
	Thresholds    *Thresholds
	Keywords      *Keywords
}

func defaultTiers() (fast, balanced, capable TierDescriptor) {
	fast = TierDescriptor{
		Name:      models.TierFast,
		Model:     ModelHaiku,
		Reasoning: models.ReasoningMinimal,
		Verbosity: models.VerbosityLow,
		MaxTokens: 1024,
		Timeout:   15 * time.Second,
	}
	balanced = TierDescriptor{
		Name:      models.TierBalanced,
		Model:     ModelSonnet,
		Reasoning: models.ReasoningMedium,
		Verbosity: models.VerbosityMedium,
		MaxTokens: 4096,
		Timeout:   60 * time.Second,
	}
	capable = TierDescriptor{
		Name:      models.TierCapable,
		Model:     ModelOpus,
		Reasoning: models.ReasoningHigh,
		Verbosity: models.VerbosityHigh,
		MaxTokens: 8192,
		Timeout:   180 * time.Second,
	}
	return fast, balanced, capable
}

// defaultDocumentTiers derives the document variants from the balanced
// tier: same model, enlarged output budget and timeout. With the default
// balanced tier this yields 6144/8192 tokens and 90s/120s timeouts.
func defaultDocumentTiers(balanced TierDescriptor) (doc, docLarge TierDescriptor) {
	doc = balanced
	doc.Name = models.TierDocument
	doc.Verbosity = models.VerbosityHigh
	doc.MaxTokens = balanced.MaxTokens + balanced.MaxTokens/2
	doc.Timeout = balanced.Timeout + balanced.Timeout/2

	docLarge = doc
	docLarge.Name = models.TierDocumentLarge
	docLarge.MaxTokens = doc.MaxTokens + doc.MaxTokens/3
	docLarge.Timeout = doc.Timeout + doc.Timeout/3
	return doc, docLarge
}

// DefaultThresholds returns the canonical classifier cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowWordCount:        15,
		MidWordCount:        50,
		Band1:               20,
		Band2:               50,
		Band3:               100,
		AvoidCapableCeiling: 4,
		DocLargeWordCount:   60,
		DocLargeScore:       4,
	}
}

// DefaultKeywords returns the keyword lists tuned for private-lending
// analyst requests.
func DefaultKeywords() Keywords {
	return Keywords{
		Speed: []string{
			"hello", "hi", "hey", "thanks", "thank you",
			"quick", "quickly", "asap", "real quick",
		},
		DocumentVerbs: []string{
			"draft", "create", "write", "compose", "generate", "develop", "prepare",
		},
		DocumentNouns: []string{
			"memo", "report", "plan", "proposal", "checklist",
			"letter", "summary", "presentation", "agenda", "outline",
		},
		Domain: []string{
			"fund", "portfolio", "lending", "loan", "borrower",
			"valuation", "irr", "nav", "limited partner", "lp",
			"deal", "credit", "yield", "origination",
		},
		Patterns: []PatternCategory{
			{
				Name: "analytical",
				Terms: []string{
					"analyze", "analyse", "analysis", "compare", "evaluate",
					"assess", "forecast", "project", "model", "quantify", "calculate",
				},
			},
			{
				Name: "portfolio",
				Terms: []string{
					"allocation", "exposure", "concentration", "diversification",
					"waterfall", "tranche", "covenant", "amortization",
				},
			},
			{
				Name:  "depth",
				Terms: []string{"comprehensive", "detailed", "thorough", "in-depth", "exhaustive"},
			},
			{
				Name:  "multiplicity",
				Terms: []string{"multi", "complex", "sophisticated", "multifaceted"},
			},
			{
				Name:  "stepwise",
				Terms: []string{"step-by-step", "step by step", "walk through", "walkthrough", "break down"},
			},
		},
	}
}

// NewRegistry builds a validated Registry from the given configuration.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	fast, balanced, capable := defaultTiers()
	if cfg.Fast != nil {
		fast = *cfg.Fast
	}
	if cfg.Balanced != nil {
		balanced = *cfg.Balanced
	}
	if cfg.Capable != nil {
		capable = *cfg.Capable
	}

	doc, docLarge := defaultDocumentTiers(balanced)
	if cfg.Document != nil {
		doc = *cfg.Document
	}
	if cfg.DocumentLarge != nil {
		docLarge = *cfg.DocumentLarge
	}

	thresholds := DefaultThresholds()
	if cfg.Thresholds != nil {
		thresholds = *cfg.Thresholds
	}
	keywords := DefaultKeywords()
	if cfg.Keywords != nil {
		keywords = *cfg.Keywords
	}

	r := &Registry{
		tiers:      []TierDescriptor{fast, balanced, capable},
		document:   doc,
		docLarge:   docLarge,
		thresholds: thresholds,
		keywords:   keywords,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultRegistry returns the built-in tier table.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(RegistryConfig{})
	if err != nil {
		// The built-in table satisfies the invariants; reaching here means
		// the defaults themselves are broken.
		panic(fmt.Sprintf("dispatch: default registry invalid: %v", err))
	}
	return r
}

// validate checks the registry invariants: timeouts and token budgets must
// be non-decreasing as tier capability increases, and every descriptor must
// be well-formed.
func (r *Registry) validate() error {
	for i, d := range r.tiers {
		if err := validateDescriptor(d); err != nil {
			return fmt.Errorf("tier %q: %w", d.Name, err)
		}
		if i == 0 {
			continue
		}
		prev := r.tiers[i-1]
		if d.Timeout < prev.Timeout {
			return fmt.Errorf("tier %q timeout %s below %q timeout %s", d.Name, d.Timeout, prev.Name, prev.Timeout)
		}
		if d.MaxTokens < prev.MaxTokens {
			return fmt.Errorf("tier %q max tokens %d below %q max tokens %d", d.Name, d.MaxTokens, prev.Name, prev.MaxTokens)
		}
	}
	if err := validateDescriptor(r.document); err != nil {
		return fmt.Errorf("document tier: %w", err)
	}
	if err := validateDescriptor(r.docLarge); err != nil {
		return fmt.Errorf("large document tier: %w", err)
	}
	if r.docLarge.MaxTokens < r.document.MaxTokens {
		return fmt.Errorf("large document budget %d below standard document budget %d", r.docLarge.MaxTokens, r.document.MaxTokens)
	}
	if r.docLarge.Timeout < r.document.Timeout {
		return fmt.Errorf("large document timeout %s below standard document timeout %s", r.docLarge.Timeout, r.document.Timeout)
	}
	return nil
}

func validateDescriptor(d TierDescriptor) error {
	if d.Model == "" {
		return fmt.Errorf("empty model identifier")
	}
	if !d.Reasoning.Valid() {
		return fmt.Errorf("invalid reasoning effort %q", d.Reasoning)
	}
	if !d.Verbosity.Valid() {
		return fmt.Errorf("invalid verbosity %q", d.Verbosity)
	}
	if d.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", d.MaxTokens)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", d.Timeout)
	}
	return nil
}

// Tiers returns a copy of the ordered tier table, cheapest first.
func (r *Registry) Tiers() []TierDescriptor {
	out := make([]TierDescriptor, len(r.tiers))
	copy(out, r.tiers)
	return out
}

// Fast returns the fast tier descriptor.
func (r *Registry) Fast() TierDescriptor { return r.tiers[0] }

// Balanced returns the balanced tier descriptor.
func (r *Registry) Balanced() TierDescriptor { return r.tiers[1] }

// Capable returns the capable tier descriptor.
func (r *Registry) Capable() TierDescriptor { return r.tiers[2] }

// Document returns the document descriptor. When large is true the
// enlarged budget/timeout variant is returned.
func (r *Registry) Document(large bool) TierDescriptor {
	if large {
		return r.docLarge
	}
	return r.document
}

// BalancedComplex returns the balanced descriptor with elevated reasoning
// and a longer timeout. Used for requests judged complex but kept off the
// capable tier.
func (r *Registry) BalancedComplex() TierDescriptor {
	d := r.tiers[1]
	d.Reasoning = models.ReasoningHigh
	d.Timeout += d.Timeout / 2
	return d
}

// Descriptor returns the descriptor for the named tier, including the
// document variants.
func (r *Registry) Descriptor(tier models.Tier) (TierDescriptor, error) {
	for _, d := range r.tiers {
		if d.Name == tier {
			return d, nil
		}
	}
	switch tier {
	case r.document.Name:
		return r.document, nil
	case r.docLarge.Name:
		return r.docLarge, nil
	}
	return TierDescriptor{}, fmt.Errorf("unknown tier %q", tier)
}

// Thresholds returns the classifier cutoffs.
func (r *Registry) Thresholds() Thresholds { return r.thresholds }

// Keywords returns the classifier keyword lists.
func (r *Registry) Keywords() Keywords { return r.keywords }

// tierFile is the YAML shape of a tier override file.
type tierFile struct {
	Tiers map[string]struct {
		Model     string `yaml:"model"`
		Reasoning string `yaml:"reasoning"`
		Verbosity string `yaml:"verbosity"`
		MaxTokens int    `yaml:"max_tokens"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"tiers"`
}

// LoadRegistryFile builds a Registry from the defaults with per-tier
// overrides read from a YAML file. Recognized tier keys are fast, balanced,
// capable, document, and document_large; unset fields keep their defaults.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier file: %w", err)
	}

	var tf tierFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing tier file %s: %w", path, err)
	}

	for name := range tf.Tiers {
		switch name {
		case "fast", "balanced", "capable", "document", "document_large":
		default:
			return nil, fmt.Errorf("tier file %s: unknown tier %q", path, name)
		}
	}

	// Base tiers are resolved first so the document variants derive from
	// the overridden balanced tier, not its default.
	fast, balanced, capable := defaultTiers()
	if err := applyTierOverrides(path, tf, map[string]*TierDescriptor{
		"fast":     &fast,
		"balanced": &balanced,
		"capable":  &capable,
	}); err != nil {
		return nil, err
	}

	doc, docLarge := defaultDocumentTiers(balanced)
	if err := applyTierOverrides(path, tf, map[string]*TierDescriptor{
		"document":       &doc,
		"document_large": &docLarge,
	}); err != nil {
		return nil, err
	}

	return NewRegistry(RegistryConfig{
		Fast:          &fast,
		Balanced:      &balanced,
		Capable:       &capable,
		Document:      &doc,
		DocumentLarge: &docLarge,
	})
}

// applyTierOverrides copies the set fields of matching tier file entries
// onto the given descriptors.
func applyTierOverrides(path string, tf tierFile, byName map[string]*TierDescriptor) error {
	for name, entry := range tf.Tiers {
		d, ok := byName[name]
		if !ok {
			continue
		}
		if entry.Model != "" {
			d.Model = entry.Model
		}
		if entry.Reasoning != "" {
			d.Reasoning = models.ReasoningEffort(entry.Reasoning)
		}
		if entry.Verbosity != "" {
			d.Verbosity = models.Verbosity(entry.Verbosity)
		}
		if entry.MaxTokens != 0 {
			d.MaxTokens = entry.MaxTokens
		}
		if entry.Timeout != "" {
			timeout, err := time.ParseDuration(entry.Timeout)
			if err != nil {
				return fmt.Errorf("tier file %s: tier %q: invalid timeout: %w", path, name, err)
			}
			d.Timeout = timeout
		}
	}
	return nil
}
