package model

import "time"

// Complaint is the central record: one reported incident with identity,
// narrative, classification, and audit data. A complaint is never deleted;
// closure and reopening are status transitions.
type Complaint struct {
	ComplaintID string     `json:"complaint_id"`          // CMP-YYYY-MM-DD-XXXXXX, immutable
	ReportedAt  time.Time  `json:"reported_at"`           // Creation time, immutable
	IncidentAt  *time.Time `json:"incident_at,omitempty"` // User-reported incident time (optional)

	Status Status `json:"status"`

	// Narrative fields, sanitized before storage
	UserSummary     string `json:"user_summary"`
	UserIntent      string `json:"user_intent"`
	ObservedOutcome string `json:"observed_outcome"`
	ExpectedOutcome string `json:"expected_outcome"`
	Context         string `json:"context,omitempty"`

	Frequency Frequency `json:"frequency"`

	// Classification fields, written by the classifier
	PrimaryCategory     Category      `json:"primary_category"`
	SecondaryCategories []Category    `json:"secondary_categories"`
	Severity            Severity      `json:"severity"`
	SeverityBasis       []string      `json:"severity_basis"`
	ProbableRootCauses  []string      `json:"probable_root_causes"`
	RoutingTarget       RoutingTarget `json:"routing_target"`
	SuggestedFix        string        `json:"suggested_fix"`
	Confidence          float64       `json:"confidence"` // Always in [0,1]

	// IDs of previously filed complaints deemed similar. Asymmetric:
	// similarity is computed once, against records existing at filing time.
	RelatedComplaints []string `json:"related_complaints"`

	Evidence []EvidenceItem `json:"evidence"`

	// Append-only; monotonically non-decreasing in length and timestamp order
	AuditTrail []AuditEntry `json:"audit_trail"`

	// Optional LLM annotation, generated after classification.
	// Never consulted by the classifier, router, or clusterer.
	TriageNote *TriageNote `json:"triage_note,omitempty"`
}

// AuditEntry records one action taken on a complaint
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`  // "system", "user", or "api"
	Action    string    `json:"action"`
}

// EvidenceItem is a reporter-supplied attachment (log excerpt, screenshot
// reference, transcript)
type EvidenceItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// TriageNote is an optional LLM-generated annotation of a classified
// complaint. It is presentation-only and never affects classification.
type TriageNote struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Note     string `json:"note"`
}

// AddAudit appends one entry to the audit trail
func (c *Complaint) AddAudit(actor, action string) {
	c.AuditTrail = append(c.AuditTrail, AuditEntry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
	})
}

// Category classifies the nature of a complaint
type Category string

const (
	CategoryBug              Category = "bug"
	CategoryModelBehavior    Category = "model_behavior"
	CategoryUxUi             Category = "ux_ui"
	CategoryFeatureRequest   Category = "feature_request"
	CategoryPolicyFriction   Category = "policy_friction"
	CategoryPerformance      Category = "performance"
	CategoryTrustSafety      Category = "trust_safety"
	CategoryMisunderstanding Category = "misunderstanding"
	CategoryOther            Category = "other"
)

// Categories lists every category in declaration order. The order is
// load-bearing: ties in category scoring resolve to the first maximum.
func Categories() []Category {
	return []Category{
		CategoryBug,
		CategoryModelBehavior,
		CategoryUxUi,
		CategoryFeatureRequest,
		CategoryPolicyFriction,
		CategoryPerformance,
		CategoryTrustSafety,
		CategoryMisunderstanding,
		CategoryOther,
	}
}

// Valid reports whether the category is a member of the closed set
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the ordered urgency tier: low < medium < high < critical
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity from lowest to highest
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Valid reports whether the severity is a member of the closed set
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AtLeast reports whether s is at or above the given tier
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() >= min.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Status is a node in the complaint lifecycle graph
type Status string

const (
	StatusNew          Status = "new"
	StatusTriaged      Status = "triaged"
	StatusStructured   Status = "structured"
	StatusClustered    Status = "clustered"
	StatusRouted       Status = "routed"
	StatusInProgress   Status = "in_progress"
	StatusAwaitingUser Status = "awaiting_user"
	StatusResolved     Status = "resolved"
	StatusClosed       Status = "closed"
	StatusReopened     Status = "reopened"
)

// Statuses lists every lifecycle state
func Statuses() []Status {
	return []Status{
		StatusNew, StatusTriaged, StatusStructured, StatusClustered,
		StatusRouted, StatusInProgress, StatusAwaitingUser, StatusResolved,
		StatusClosed, StatusReopened,
	}
}

// Valid reports whether the status is a declared lifecycle state
func (s Status) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Frequency describes how often the reporter has hit the issue
type Frequency string

const (
	FrequencyOnce         Frequency = "once"
	FrequencyIntermittent Frequency = "intermittent"
	FrequencyPersistent   Frequency = "persistent"
	FrequencyUnknown      Frequency = "unknown"
)

// Valid reports whether the frequency is a member of the closed set
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyIntermittent, FrequencyPersistent, FrequencyUnknown:
		return true
	}
	return false
}

// RoutingTarget is the downstream handling queue a complaint is assigned to
type RoutingTarget string

const (
	RouteSelfCorrection      RoutingTarget = "self_correction"
	RouteHumanReview         RoutingTarget = "human_review"
	RouteProductBacklog      RoutingTarget = "product_backlog"
	RouteSafetyEscalation    RoutingTarget = "safety_escalation"
	RouteDocumentationUpdate RoutingTarget = "documentation_update"
)

// RootCauseUnknown is the sentinel used when no root-cause pattern matched
const RootCauseUnknown = "unknown"
