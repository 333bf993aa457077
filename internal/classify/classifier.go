// Package classify implements the deterministic classification engine:
// category scoring, severity scoring, root-cause matching, confidence
// estimation, routing, and fix suggestion. Every function here is pure over
// the record and the injected rule tables; classification never fails.
package classify

import (
	"fmt"
	"strings"

	"gripe/internal/model"
	"gripe/internal/rules"
)

// Classifier scores complaints against the rule tables
type Classifier struct {
	rules *rules.Rules
}

// NewClassifier creates a classifier over the given rule set
func NewClassifier(r *rules.Rules) *Classifier {
	return &Classifier{rules: r}
}

// maxSecondary caps the secondary category list
const maxSecondary = 5

// narrative concatenates the scored narrative fields, case-folded
func narrative(c *model.Complaint) string {
	return strings.ToLower(c.UserSummary + " " + c.UserIntent + " " + c.ObservedOutcome)
}

// containsAny reports whether any of the words occurs in text as a substring
func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Category determines the primary and secondary categories. Each category
// scores the total occurrence count of its keywords in the narrative text,
// plus any boost whose trigger words appear. Ties resolve to the first
// maximum in table order; an all-zero scoreboard yields "other".
func (cl *Classifier) Category(c *model.Complaint) (model.Category, []model.Category) {
	text := narrative(c)

	scores := make(map[model.Category]int, len(cl.rules.Categories))
	for _, cat := range cl.rules.Categories {
		score := 0
		for _, kw := range cat.Keywords {
			score += strings.Count(text, strings.ToLower(kw))
		}
		scores[cat.Name] = score
	}

	for _, boost := range cl.rules.Boosts {
		if containsAny(text, boost.Triggers) {
			scores[boost.Category] += boost.Points
		}
	}

	primary := model.CategoryOther
	best := 0
	for _, cat := range cl.rules.Categories {
		if scores[cat.Name] > best {
			best = scores[cat.Name]
			primary = cat.Name
		}
	}

	var secondary []model.Category
	for _, cat := range cl.rules.Categories {
		if cat.Name == primary || scores[cat.Name] <= 0 {
			continue
		}
		secondary = append(secondary, cat.Name)
		if len(secondary) == maxSecondary {
			break
		}
	}

	return primary, secondary
}

// Severity accumulates a score from tier keyword hits (weighted 3/2/1),
// frequency, work impact, and category elevation, then maps it onto the
// severity ladder: >=4 critical, >=3 high, >=1 medium, else low. The basis
// list names every rule that fired and is never empty.
func (cl *Classifier) Severity(c *model.Complaint, primary model.Category) (model.Severity, []string) {
	text := narrative(c)

	score := 0
	var basis []string

	for _, tier := range cl.rules.SeverityTiers {
		for _, kw := range tier.Keywords {
			if strings.Contains(text, kw) {
				score += tier.Weight
				basis = append(basis, fmt.Sprintf("Contains '%s' indicator", kw))
			}
		}
	}

	switch c.Frequency {
	case model.FrequencyPersistent:
		score += 2
		basis = append(basis, "Recurring issue (persistent)")
	case model.FrequencyIntermittent:
		score += 1
		basis = append(basis, "Recurring issue (intermittent)")
	}

	if containsAny(text, cl.rules.WorkImpactWords) {
		score += 1
		basis = append(basis, "Impacts work/productivity")
	}

	if cl.rules.IsElevated(primary) {
		score += 1
		basis = append(basis, fmt.Sprintf("Category: %s (elevated priority)", primary))
	}

	var severity model.Severity
	switch {
	case score >= 4:
		severity = model.SeverityCritical
	case score >= 3:
		severity = model.SeverityHigh
	case score >= 1:
		severity = model.SeverityMedium
	default:
		severity = model.SeverityLow
	}

	if len(basis) == 0 {
		basis = []string{"Default severity based on available information"}
	}

	return severity, basis
}

// RootCauses matches the extended narrative (context included) against each
// root-cause pattern list. A cause is added at most once; when nothing
// matches the result is the unknown sentinel.
func (cl *Classifier) RootCauses(c *model.Complaint) []string {
	text := strings.ToLower(
		c.UserSummary + " " + c.UserIntent + " " + c.ObservedOutcome + " " + c.Context,
	)

	var causes []string
	for _, rule := range cl.rules.RootCauses {
		for _, pattern := range rule.Patterns {
			if strings.Contains(text, strings.ToLower(pattern)) {
				causes = append(causes, rule.Cause)
				break
			}
		}
	}

	if len(causes) == 0 {
		causes = []string{model.RootCauseUnknown}
	}

	return causes
}

// Confidence estimates classification confidence from field completeness and
// categorization strength. Bounded to [0.5, 1.0] since every bonus is
// non-negative over the 0.5 base.
func (cl *Classifier) Confidence(c *model.Complaint) float64 {
	score := 0.5

	if len(c.UserIntent) > 20 {
		score += 0.1
	}
	if len(c.ObservedOutcome) > 20 {
		score += 0.1
	}
	if c.Context != "" {
		score += 0.05
	}
	if c.PrimaryCategory != model.CategoryOther {
		score += 0.15
	}
	if len(c.SecondaryCategories) > 0 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Classify runs the full pass and writes every classification field. Safe to
// re-run; each pass overwrites the previous one.
func (cl *Classifier) Classify(c *model.Complaint) {
	primary, secondary := cl.Category(c)
	c.PrimaryCategory = primary
	c.SecondaryCategories = secondary

	severity, basis := cl.Severity(c, primary)
	c.Severity = severity
	c.SeverityBasis = basis

	c.ProbableRootCauses = cl.RootCauses(c)
	c.RoutingTarget = cl.Route(c)
	c.SuggestedFix = cl.SuggestFix(c)
	c.Confidence = cl.Confidence(c)
}
