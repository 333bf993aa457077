// Package rules holds the immutable rule tables driving classification,
// routing, clustering, and the lifecycle state machine. Tables are built
// once at startup and injected; nothing reads them from global state.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"gripe/internal/model"
)

// CategoryRule defines one category: its keywords drive scoring, the emoji
// and description feed the presentation layer.
type CategoryRule struct {
	Name        model.Category
	Emoji       string
	Description string
	Keywords    []string
}

// SeverityTier defines one severity keyword set and the weight each hit adds
type SeverityTier struct {
	Level    model.Severity
	Weight   int
	Keywords []string
}

// Boost adds fixed points to one category when any trigger word is present.
// Boosts apply after keyword scoring and are additive.
type Boost struct {
	Category model.Category
	Triggers []string
	Points   int
}

// RootCauseRule maps a root-cause identifier to its substring patterns.
// The first matching pattern adds the cause; later patterns are not checked.
type RootCauseRule struct {
	Cause    string
	Patterns []string
}

// Rules is the complete immutable rule set
type Rules struct {
	Categories    []CategoryRule
	SeverityTiers []SeverityTier
	Boosts        []Boost

	// Words whose presence adds one severity point for work impact
	WorkImpactWords []string
	// Categories that add one severity point when primary
	ElevatedCategories []model.Category

	RootCauses []RootCauseRule

	// Fixed fix-suggestion texts per category; model_behavior is refined
	// further by BehaviorFixes keyed on matched root causes.
	CategoryFixes map[model.Category][]string
	BehaviorFixes []RootCauseFix

	Transitions map[model.Status][]model.Status

	// Minimum keyword-overlap ratio for two complaints to cluster
	SimilarityThreshold float64

	// Patterns the shell uses to detect that a message is a complaint
	Triggers []*regexp.Regexp
}

// RootCauseFix pairs a root cause with its fix suggestions, in the order
// they are emitted.
type RootCauseFix struct {
	Cause       string
	Suggestions []string
}

// Category returns the rule for the named category, or nil
func (r *Rules) Category(name model.Category) *CategoryRule {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i]
		}
	}
	return nil
}

// IsElevated reports whether the category raises severity when primary
func (r *Rules) IsElevated(cat model.Category) bool {
	for _, c := range r.ElevatedCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// IsTrigger reports whether the text matches any complaint trigger pattern
func (r *Rules) IsTrigger(text string) bool {
	for _, re := range r.Triggers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Default builds the built-in rule set. Category declaration order is
// load-bearing: scoring ties resolve to the first maximum.
func Default() *Rules {
	return &Rules{
		Categories: []CategoryRule{
			{
				Name:        model.CategoryBug,
				Emoji:       "🐞",
				Description: "System malfunction or technical error",
				Keywords:    []string{"crash", "freeze", "error", "broken", "not working", "failed"},
			},
			{
				Name:        model.CategoryModelBehavior,
				Emoji:       "🤖",
				Description: "AI model not behaving as expected",
				Keywords: []string{
					"ignored", "verbose", "wrong tone", "hallucination", "repetition",
					"misunderstood", "constraint", "overwrite", "replace",
				},
			},
			{
				Name:        model.CategoryUxUi,
				Emoji:       "🖥",
				Description: "User interface or experience issue",
				Keywords:    []string{"confusing", "hidden", "can't find", "unclear", "difficult to use"},
			},
			{
				Name:        model.CategoryFeatureRequest,
				Emoji:       "💡",
				Description: "Request for new capability",
				Keywords:    []string{"need", "want", "would be nice", "suggestion", "could you add"},
			},
			{
				Name:        model.CategoryPolicyFriction,
				Emoji:       "📜",
				Description: "Issue with system restrictions or policies",
				Keywords:    []string{"won't let me", "refused", "blocked", "not allowed", "restricted"},
			},
			{
				Name:        model.CategoryPerformance,
				Emoji:       "🚀",
				Description: "Speed or latency issue",
				Keywords:    []string{"slow", "timeout", "lag", "taking forever", "performance"},
			},
			{
				Name:        model.CategoryTrustSafety,
				Emoji:       "🔐",
				Description: "Privacy or security concern",
				Keywords:    []string{"privacy", "security", "data", "unsafe", "concern"},
			},
			{
				Name:        model.CategoryMisunderstanding,
				Emoji:       "🧠",
				Description: "Confusion about how something works",
				Keywords:    []string{"confused", "don't understand", "how do", "what does"},
			},
			{
				Name:        model.CategoryOther,
				Emoji:       "❓",
				Description: "Uncategorized complaint",
				Keywords:    []string{},
			},
		},
		SeverityTiers: []SeverityTier{
			{
				Level:  model.SeverityCritical,
				Weight: 3,
				Keywords: []string{
					"impossible", "can't work", "completely broken", "unusable",
					"critical", "urgent", "emergency",
				},
			},
			{
				Level:    model.SeverityHigh,
				Weight:   2,
				Keywords: []string{"broken", "can't", "won't", "always", "never", "job", "work"},
			},
			{
				Level:    model.SeverityMedium,
				Weight:   1,
				Keywords: []string{"difficult", "frustrating", "sometimes", "often", "annoying"},
			},
		},
		Boosts: []Boost{
			{
				Category: model.CategoryModelBehavior,
				Triggers: []string{"append", "replace", "overwrite", "constraint"},
				Points:   5,
			},
			{
				Category: model.CategoryFeatureRequest,
				Triggers: []string{"dark mode", "feature", "add", "need", "want"},
				Points:   3,
			},
		},
		WorkImpactWords:    []string{"job", "work", "business", "project"},
		ElevatedCategories: []model.Category{model.CategoryBug, model.CategoryTrustSafety},
		RootCauses: []RootCauseRule{
			{Cause: "constraint_parsing_failure", Patterns: []string{"ignored constraint", "didn't follow", "overwrite", "replaced", "append"}},
			{Cause: "context_overload", Patterns: []string{"long conversation", "forgot", "earlier"}},
			{Cause: "ambiguous_instructions", Patterns: []string{"unclear", "confused", "not sure what"}},
			{Cause: "model_overcorrection", Patterns: []string{"too cautious", "overly", "excessive"}},
			{Cause: "system_bug", Patterns: []string{"crash", "error", "freeze", "failed"}},
			{Cause: "latency_issue", Patterns: []string{"slow", "timeout", "lag"}},
			{Cause: "ui_confusion", Patterns: []string{"couldn't find", "where is", "how do"}},
			{Cause: "policy_boundary", Patterns: []string{"won't let me", "refused", "blocked"}},
			{Cause: "hallucination", Patterns: []string{"made up", "incorrect", "wrong information", "fabricated"}},
			{Cause: "data_absence", Patterns: []string{"don't know", "no information", "can't find"}},
		},
		CategoryFixes: map[model.Category][]string{
			model.CategoryBug: {
				"Investigate technical root cause",
				"Review error logs and stack traces",
			},
			model.CategoryUxUi: {
				"Review UI/UX design for clarity",
				"Add user guidance or tooltips",
			},
			model.CategoryPerformance: {
				"Optimize processing pipeline",
				"Investigate latency bottlenecks",
			},
			model.CategoryPolicyFriction: {
				"Review policy application logic",
				"Improve refusal explanations",
			},
			model.CategoryMisunderstanding: {
				"Improve user documentation",
				"Add clarifying examples",
			},
		},
		BehaviorFixes: []RootCauseFix{
			{
				Cause: "constraint_parsing_failure",
				Suggestions: []string{
					"Increase constraint adherence monitoring",
					"Add explicit constraint verification step",
				},
			},
			{
				Cause: "context_overload",
				Suggestions: []string{
					"Implement conversation summarization",
					"Reduce context window usage",
				},
			},
		},
		Transitions: map[model.Status][]model.Status{
			model.StatusNew:          {model.StatusTriaged},
			model.StatusTriaged:      {model.StatusStructured},
			model.StatusStructured:   {model.StatusClustered},
			model.StatusClustered:    {model.StatusRouted},
			model.StatusRouted:       {model.StatusInProgress},
			model.StatusInProgress:   {model.StatusResolved, model.StatusAwaitingUser},
			model.StatusAwaitingUser: {model.StatusInProgress, model.StatusResolved},
			model.StatusResolved:     {model.StatusClosed},
			model.StatusClosed:       {model.StatusReopened},
			model.StatusReopened:     {model.StatusTriaged},
		},
		SimilarityThreshold: 0.5,
		Triggers: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(file|submit|make|log)\s+(a\s+)?complaint\b`),
			regexp.MustCompile(`(?i)\bi\s+want\s+to\s+complain\b`),
			regexp.MustCompile(`(?i)\bthis\s+(isn't|is\s+not|doesn't)\s+work`),
			regexp.MustCompile(`(?i)\breport\s+(a\s+)?(bug|issue|problem)\b`),
			regexp.MustCompile(`(?i)\bsomething\s+(went\s+)?wrong\b`),
			regexp.MustCompile(`(?i)\bnot\s+working\b`),
			regexp.MustCompile(`(?i)\bbroken\b`),
		},
	}
}

// Overrides are the tunable knobs loadable from a YAML file. Keyword tables
// stay compiled in; only thresholds are adjustable.
type Overrides struct {
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
}

// Load builds the default rule set and applies overrides from the given
// YAML file. An empty path returns the defaults unchanged.
func Load(path string) (*Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	if ov.SimilarityThreshold != nil {
		if *ov.SimilarityThreshold < 0 || *ov.SimilarityThreshold > 1 {
			return nil, fmt.Errorf("similarity_threshold must be in [0,1], got %v", *ov.SimilarityThreshold)
		}
		r.SimilarityThreshold = *ov.SimilarityThreshold
	}

	return r, nil
}
