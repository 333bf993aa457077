// Package cluster implements the keyword-overlap similarity scan used to
// relate a newly filed complaint to earlier ones in the same category.
//
// The relation is intentionally asymmetric: the overlap denominator is the
// new record's keyword count, and similarity is computed once per record
// against the records existing at filing time. Callers must not assume
// symmetry or transitivity.
package cluster

import (
	"strings"

	"gripe/internal/model"
	"gripe/internal/rules"
)

// Clusterer finds similar complaints by keyword-set overlap
type Clusterer struct {
	rules *rules.Rules
}

// NewClusterer creates a clusterer over the given rule set
func NewClusterer(r *rules.Rules) *Clusterer {
	return &Clusterer{rules: r}
}

// Keywords extracts the deduplicated set of category keywords (across all
// category tables, not just the record's own) present in the record's intent
// and observed outcome.
func (cl *Clusterer) Keywords(c *model.Complaint) map[string]struct{} {
	text := strings.ToLower(c.UserIntent + " " + c.ObservedOutcome)

	keywords := make(map[string]struct{})
	for _, cat := range cl.rules.Categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				keywords[kw] = struct{}{}
			}
		}
	}
	return keywords
}

// Similar returns the IDs of candidates whose keyword overlap with the new
// complaint meets the similarity threshold, in candidate iteration order.
// The candidate pool is expected to share the new record's primary category;
// the record itself is skipped if present.
//
// Cost is O(categories x candidates) and scales with the stored record
// count. That is acceptable at single-tenant file-backed scale and is a
// known limit of this scan, not an accident.
func (cl *Clusterer) Similar(c *model.Complaint, candidates []*model.Complaint) []string {
	newKeywords := cl.Keywords(c)
	if len(newKeywords) == 0 {
		return nil
	}

	var similar []string
	for _, candidate := range candidates {
		if candidate.ComplaintID == c.ComplaintID {
			continue
		}

		candidateKeywords := cl.Keywords(candidate)

		shared := 0
		for kw := range newKeywords {
			if _, ok := candidateKeywords[kw]; ok {
				shared++
			}
		}

		overlap := float64(shared) / float64(len(newKeywords))
		if overlap >= cl.rules.SimilarityThreshold {
			similar = append(similar, candidate.ComplaintID)
		}
	}

	return similar
}
