package classify

import "gripe/internal/model"

// hasCause reports whether the cause is among the matched root causes
func hasCause(causes []string, cause string) bool {
	for _, c := range causes {
		if c == cause {
			return true
		}
	}
	return false
}

// Route assigns the downstream handling queue. The rules form an ordered
// priority list and the first match wins; the sequence must not be reordered
// even where rules look logically disjoint.
func (cl *Classifier) Route(c *model.Complaint) model.RoutingTarget {
	if c.Severity == model.SeverityCritical {
		return model.RouteHumanReview
	}

	if c.PrimaryCategory == model.CategoryTrustSafety && c.Severity.AtLeast(model.SeverityHigh) {
		return model.RouteSafetyEscalation
	}

	if c.PrimaryCategory == model.CategoryBug && c.Severity.AtLeast(model.SeverityHigh) {
		return model.RouteHumanReview
	}

	if c.PrimaryCategory == model.CategoryModelBehavior &&
		hasCause(c.ProbableRootCauses, "constraint_parsing_failure") {
		return model.RouteSelfCorrection
	}

	if c.PrimaryCategory == model.CategoryFeatureRequest {
		return model.RouteProductBacklog
	}

	if c.PrimaryCategory == model.CategoryMisunderstanding && c.Frequency == model.FrequencyPersistent {
		return model.RouteDocumentationUpdate
	}

	if c.PrimaryCategory == model.CategoryPerformance && c.Severity.AtLeast(model.SeverityHigh) {
		return model.RouteHumanReview
	}

	if c.PrimaryCategory == model.CategoryModelBehavior {
		return model.RouteSelfCorrection
	}

	return model.RouteHumanReview
}
