// Package render formats complaint records for terminal display and
// writes JSON/Markdown artifacts.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gripe/internal/model"
	"gripe/internal/rules"
	"gripe/internal/store"
)

// severityEmoji maps severity levels to display markers
var severityEmoji = map[model.Severity]string{
	model.SeverityCritical: "🔴",
	model.SeverityHigh:     "🟠",
	model.SeverityMedium:   "🟡",
	model.SeverityLow:      "🟢",
}

// Renderer formats records using the rule tables for category metadata
type Renderer struct {
	rules *rules.Rules
}

// NewRenderer creates a renderer over the given rule tables
func NewRenderer(r *rules.Rules) *Renderer {
	return &Renderer{rules: r}
}

// SeverityEmoji returns the marker for a severity level
func SeverityEmoji(sev model.Severity) string {
	if e, ok := severityEmoji[sev]; ok {
		return e
	}
	return "⚪"
}

// CategoryEmoji returns the marker for a category
func (r *Renderer) CategoryEmoji(cat model.Category) string {
	if rule := r.rules.Category(cat); rule != nil && rule.Emoji != "" {
		return rule.Emoji
	}
	return "❓"
}

// titleWords turns snake_case identifiers into display text
func titleWords(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Confirmation renders the filing confirmation shown after a complaint is
// processed and saved.
func (r *Renderer) Confirmation(c *model.Complaint) string {
	var b strings.Builder

	b.WriteString("✓ Your complaint has been filed and processed.\n\n")
	fmt.Fprintf(&b, "%s **Complaint ID:** %s\n", r.CategoryEmoji(c.PrimaryCategory), c.ComplaintID)
	fmt.Fprintf(&b, "%s **Severity:** %s\n", SeverityEmoji(c.Severity), strings.ToUpper(string(c.Severity)))
	fmt.Fprintf(&b, "📊 **Category:** %s\n", c.PrimaryCategory)
	fmt.Fprintf(&b, "🔄 **Status:** %s\n", strings.ToUpper(string(c.Status)))
	fmt.Fprintf(&b, "🎯 **Routed to:** %s\n", titleWords(string(c.RoutingTarget)))

	b.WriteString("\n**Classification Details:**")

	if len(c.SeverityBasis) > 0 {
		basis := c.SeverityBasis
		if len(basis) > 2 {
			basis = basis[:2]
		}
		fmt.Fprintf(&b, "\n*Severity reasoning:* %s", strings.Join(basis, ", "))
	}

	if len(c.ProbableRootCauses) > 0 {
		causes := c.ProbableRootCauses
		if len(causes) > 2 {
			causes = causes[:2]
		}
		titled := make([]string, len(causes))
		for i, cause := range causes {
			titled[i] = titleWords(cause)
		}
		fmt.Fprintf(&b, "\n*Probable causes:* %s", strings.Join(titled, ", "))
	}

	if len(c.RelatedComplaints) > 0 {
		fmt.Fprintf(&b, "\n*Related complaints:* %d similar issue(s) found", len(c.RelatedComplaints))
	}

	if c.SuggestedFix != "" {
		fmt.Fprintf(&b, "\n\n**Suggested Fix:**\n%s", c.SuggestedFix)
	}

	fmt.Fprintf(&b, "\n\n**Confidence:** %.0f%%", c.Confidence*100)
	fmt.Fprintf(&b, "\n\n*If this issue recurs, reference ID: %s*", c.ComplaintID)

	return b.String()
}

// Summary renders a short human-readable view of a stored complaint
func (r *Renderer) Summary(c *model.Complaint) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Complaint %s\n", r.CategoryEmoji(c.PrimaryCategory), c.ComplaintID)
	fmt.Fprintf(&b, "%s Severity: %s\n", SeverityEmoji(c.Severity), strings.ToUpper(string(c.Severity)))
	fmt.Fprintf(&b, "📊 Category: %s\n", c.PrimaryCategory)
	fmt.Fprintf(&b, "📅 Reported: %s\n", c.ReportedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "🔄 Status: %s\n", c.Status)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Intent: %s\n", c.UserIntent)
	fmt.Fprintf(&b, "Observed: %s\n", c.ObservedOutcome)
	fmt.Fprintf(&b, "Expected: %s", c.ExpectedOutcome)

	return b.String()
}

// Stats renders storage statistics, iterating buckets in canonical order
func (r *Renderer) Stats(stats store.Statistics) string {
	var b strings.Builder

	b.WriteString("--- System Statistics ---\n")
	fmt.Fprintf(&b, "Total Complaints: %d\n", stats.TotalComplaints)

	b.WriteString("\nBy Category:\n")
	for _, cat := range model.Categories() {
		if n := stats.ByCategory[string(cat)]; n > 0 {
			fmt.Fprintf(&b, "  %s %s: %d\n", r.CategoryEmoji(cat), cat, n)
		}
	}

	b.WriteString("\nBy Severity:\n")
	for _, sev := range model.Severities() {
		if n := stats.BySeverity[string(sev)]; n > 0 {
			fmt.Fprintf(&b, "  %s %s: %d\n", SeverityEmoji(sev), sev, n)
		}
	}

	b.WriteString("\nBy Status:\n")
	for _, status := range model.Statuses() {
		if n := stats.ByStatus[string(status)]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", status, n)
		}
	}

	return b.String()
}

// WriteJSON writes the record as an indented JSON artifact and returns the
// file path.
func (r *Renderer) WriteJSON(c *model.Complaint, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal complaint: %w", err)
	}

	path := filepath.Join(dir, c.ComplaintID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// WriteMarkdown writes the record as a Markdown report and returns the
// file path.
func (r *Renderer) WriteMarkdown(c *model.Complaint, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Complaint %s\n\n", c.ComplaintID)
	fmt.Fprintf(&b, "- **Category:** %s %s\n", r.CategoryEmoji(c.PrimaryCategory), c.PrimaryCategory)
	fmt.Fprintf(&b, "- **Severity:** %s %s\n", SeverityEmoji(c.Severity), strings.ToUpper(string(c.Severity)))
	fmt.Fprintf(&b, "- **Status:** %s\n", c.Status)
	fmt.Fprintf(&b, "- **Reported:** %s\n", c.ReportedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Routed to:** %s\n", titleWords(string(c.RoutingTarget)))
	fmt.Fprintf(&b, "- **Confidence:** %.0f%%\n", c.Confidence*100)

	b.WriteString("\n## Narrative\n\n")
	fmt.Fprintf(&b, "**Summary:** %s\n\n", c.UserSummary)
	fmt.Fprintf(&b, "**Intent:** %s\n\n", c.UserIntent)
	fmt.Fprintf(&b, "**Observed:** %s\n\n", c.ObservedOutcome)
	fmt.Fprintf(&b, "**Expected:** %s\n", c.ExpectedOutcome)
	if c.Context != "" {
		fmt.Fprintf(&b, "\n**Context:** %s\n", c.Context)
	}

	b.WriteString("\n## Classification\n\n")
	if len(c.SecondaryCategories) > 0 {
		secs := make([]string, len(c.SecondaryCategories))
		for i, sc := range c.SecondaryCategories {
			secs[i] = string(sc)
		}
		fmt.Fprintf(&b, "- Secondary categories: %s\n", strings.Join(secs, ", "))
	}
	for _, basis := range c.SeverityBasis {
		fmt.Fprintf(&b, "- Severity basis: %s\n", basis)
	}
	for _, cause := range c.ProbableRootCauses {
		fmt.Fprintf(&b, "- Probable cause: %s\n", titleWords(cause))
	}
	if c.SuggestedFix != "" {
		fmt.Fprintf(&b, "- Suggested fix: %s\n", c.SuggestedFix)
	}
	if len(c.RelatedComplaints) > 0 {
		fmt.Fprintf(&b, "- Related: %s\n", strings.Join(c.RelatedComplaints, ", "))
	}

	if c.TriageNote != nil {
		b.WriteString("\n## Triage Note\n\n")
		fmt.Fprintf(&b, "%s\n\n*Generated by %s (%s); does not affect classification.*\n",
			c.TriageNote.Note, c.TriageNote.Provider, c.TriageNote.Model)
	}

	if len(c.AuditTrail) > 0 {
		b.WriteString("\n## Audit Trail\n\n")
		for _, entry := range c.AuditTrail {
			fmt.Fprintf(&b, "- %s [%s] %s\n",
				entry.Timestamp.Format(time.RFC3339), entry.Actor, entry.Action)
		}
	}

	path := filepath.Join(dir, c.ComplaintID+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
