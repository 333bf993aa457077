package classify

import (
	"strings"

	"gripe/internal/model"
)

// genericFix is returned when no table entry applies
const genericFix = "Requires manual investigation and review"

// SuggestFix produces the fix-suggestion text for a classified complaint.
// model_behavior complaints are refined by which root causes matched; every
// other category maps straight to its table entry.
func (cl *Classifier) SuggestFix(c *model.Complaint) string {
	var suggestions []string

	if c.PrimaryCategory == model.CategoryModelBehavior {
		for _, fix := range cl.rules.BehaviorFixes {
			if hasCause(c.ProbableRootCauses, fix.Cause) {
				suggestions = append(suggestions, fix.Suggestions...)
			}
		}
	} else if fixes, ok := cl.rules.CategoryFixes[c.PrimaryCategory]; ok {
		suggestions = append(suggestions, fixes...)
	}

	if len(suggestions) == 0 {
		return genericFix
	}
	return strings.Join(suggestions, "; ")
}
