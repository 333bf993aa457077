// Package store persists complaint records as one JSON document per ID and
// maintains three inverted indices (category, severity, status) mapping enum
// values to ordered ID lists.
//
// Error taxonomy: *ValidationError for refused saves, ErrNotFound for
// unknown IDs, *lifecycle.InvalidTransitionError for rejected status
// changes; everything else is a wrapped storage I/O failure. Every file
// write goes through a temp-file+rename so a crash mid-update cannot leave a
// half-written document, and a rejected transition mutates nothing.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"gripe/internal/lifecycle"
	"gripe/internal/model"
	"gripe/internal/util"
)

const (
	complaintsDirName = "complaints"
	indicesDirName    = "indices"

	categoryIndexFile = "by_category.json"
	severityIndexFile = "by_severity.json"
	statusIndexFile   = "by_status.json"
)

// index is an inverted mapping from enum value to ordered record IDs
type index map[string][]string

// append adds the ID to the bucket if absent; idempotent under repeated saves
func (ix index) append(bucket, id string) {
	for _, existing := range ix[bucket] {
		if existing == id {
			return
		}
	}
	ix[bucket] = append(ix[bucket], id)
}

// remove drops the ID from the bucket, preserving the order of the rest
func (ix index) remove(bucket, id string) {
	ids := ix[bucket]
	for i, existing := range ids {
		if existing == id {
			ix[bucket] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// Store is the file-backed indexed complaint store. A single mutex
// serializes all operations, which matches the original single-threaded
// semantics and is the simplest safe option for concurrent callers.
type Store struct {
	mu sync.Mutex

	complaintsDir string
	indicesDir    string

	machine *lifecycle.Machine

	// Record read cache, keyed by ID, holding marshaled documents so cached
	// reads never alias a caller's record
	cache    *gocache.Cache
	category index
	severity index
	status   index
}

// New opens (or initializes) a store rooted at cfg.Dir
func New(cfg model.StorageConfig, cacheCfg model.CacheConfig, machine *lifecycle.Machine) (*Store, error) {
	s := &Store{
		complaintsDir: filepath.Join(cfg.Dir, complaintsDirName),
		indicesDir:    filepath.Join(cfg.Dir, indicesDirName),
		machine:       machine,
	}

	if cacheCfg.Enabled {
		ttl := cacheCfg.TTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		s.cache = gocache.New(ttl, 10*time.Minute)
	}

	for _, dir := range []string{s.complaintsDir, s.indicesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	var err error
	if s.category, err = s.loadIndex(categoryIndexFile); err != nil {
		return nil, err
	}
	if s.severity, err = s.loadIndex(severityIndexFile); err != nil {
		return nil, err
	}
	if s.status, err = s.loadIndex(statusIndexFile); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the schema invariants a record must satisfy before a save
// is accepted: identifier form, required fields, enum membership, and the
// confidence range.
func Validate(c *model.Complaint) error {
	if !util.ValidID(c.ComplaintID) {
		return &ValidationError{Field: "complaint_id", Reason: "must match CMP-YYYY-MM-DD-XXXXXX"}
	}
	if c.ReportedAt.IsZero() {
		return &ValidationError{Field: "reported_at", Reason: "missing"}
	}
	if !c.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", c.Status)}
	}
	if !c.PrimaryCategory.Valid() {
		return &ValidationError{Field: "primary_category", Reason: fmt.Sprintf("unknown category %q", c.PrimaryCategory)}
	}
	if !c.Severity.Valid() {
		return &ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown severity %q", c.Severity)}
	}
	if c.UserIntent == "" {
		return &ValidationError{Field: "user_intent", Reason: "missing"}
	}
	if c.ObservedOutcome == "" {
		return &ValidationError{Field: "observed_outcome", Reason: "missing"}
	}
	if c.ExpectedOutcome == "" {
		return &ValidationError{Field: "expected_outcome", Reason: "missing"}
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be between 0 and 1"}
	}
	return nil
}

// Save validates the record, persists its document, and updates all three
// indices. Index appends are idempotent, so re-saving an existing record is
// safe. A validation failure leaves both the document and the indices
// untouched.
func (s *Store) Save(c *model.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(c)
}

func (s *Store) saveLocked(c *model.Complaint) error {
	if err := Validate(c); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal complaint: %w", err)
	}

	path := s.documentPath(c.ComplaintID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create complaint dir: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write complaint document: %w", err)
	}

	s.category.append(string(c.PrimaryCategory), c.ComplaintID)
	s.severity.append(string(c.Severity), c.ComplaintID)
	s.status.append(string(c.Status), c.ComplaintID)

	if err := s.saveIndices(); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Set(c.ComplaintID, data, gocache.DefaultExpiration)
	}
	return nil
}

// Load returns the complaint for the ID, or ErrNotFound
func (s *Store) Load(id string) (*model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(id)
}

func (s *Store) loadLocked(id string) (*model.Complaint, error) {
	var data []byte

	if s.cache != nil {
		if cached, found := s.cache.Get(id); found {
			data = cached.([]byte)
		}
	}

	if data == nil {
		raw, err := os.ReadFile(s.documentPath(id))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("read complaint document: %w", err)
		}
		data = raw
		if s.cache != nil {
			s.cache.Set(id, data, gocache.DefaultExpiration)
		}
	}

	var c model.Complaint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse complaint document %s: %w", id, err)
	}
	return &c, nil
}

// UpdateStatus transitions the record to the new status, moving its ID from
// the old status bucket to the new one, and persists the record and the
// indices. The transition is validated before any file is touched, so a
// rejection leaves both the record and the indices exactly as they were.
func (s *Store) UpdateStatus(id string, newStatus model.Status, actor string) (*model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(id)
	if err != nil {
		return nil, err
	}

	oldStatus := c.Status
	if err := s.machine.Apply(c, newStatus, actor); err != nil {
		return nil, err
	}

	s.status.remove(string(oldStatus), id)

	if err := s.saveLocked(c); err != nil {
		// Undo the in-memory bucket move; nothing was persisted
		s.status.append(string(oldStatus), id)
		return nil, err
	}
	return c, nil
}

// SearchByCategory resolves the category index bucket to records in bucket
// order. Cost is O(bucket size); records that fail to load are skipped.
func (s *Store) SearchByCategory(cat model.Category) []*model.Complaint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(s.category[string(cat)])
}

// SearchBySeverity resolves the severity index bucket to records
func (s *Store) SearchBySeverity(sev model.Severity) []*model.Complaint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(s.severity[string(sev)])
}

// SearchByStatus resolves the status index bucket to records
func (s *Store) SearchByStatus(status model.Status) []*model.Complaint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(s.status[string(status)])
}

func (s *Store) resolve(ids []string) []*model.Complaint {
	var records []*model.Complaint
	for _, id := range ids {
		if c, err := s.loadLocked(id); err == nil {
			records = append(records, c)
		}
	}
	return records
}

// AllIDs returns every distinct stored ID, sorted
func (s *Store) AllIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, ids := range s.category {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	all := make([]string, 0, len(seen))
	for id := range seen {
		all = append(all, id)
	}
	sort.Strings(all)
	return all
}

// Statistics reports per-bucket counts across the three index dimensions
// plus the distinct record total. Cost scales with stored record count.
type Statistics struct {
	TotalComplaints int            `json:"total_complaints"`
	ByCategory      map[string]int `json:"by_category"`
	BySeverity      map[string]int `json:"by_severity"`
	ByStatus        map[string]int `json:"by_status"`
}

// Stats computes storage statistics from the indices
func (s *Store) Stats() Statistics {
	total := len(s.AllIDs())

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := func(ix index) map[string]int {
		out := make(map[string]int, len(ix))
		for bucket, ids := range ix {
			out[bucket] = len(ids)
		}
		return out
	}

	return Statistics{
		TotalComplaints: total,
		ByCategory:      counts(s.category),
		BySeverity:      counts(s.severity),
		ByStatus:        counts(s.status),
	}
}

// documentPath derives the record path: year/month subdirectories when the
// ID parses, the complaints root otherwise.
func (s *Store) documentPath(id string) string {
	if year, month, ok := util.IDDateParts(id); ok {
		return filepath.Join(s.complaintsDir, year, month, id+".json")
	}
	return filepath.Join(s.complaintsDir, id+".json")
}

func (s *Store) loadIndex(name string) (index, error) {
	path := filepath.Join(s.indicesDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return index{}, nil
		}
		return nil, fmt.Errorf("read index %s: %w", name, err)
	}

	var ix index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", name, err)
	}
	return ix, nil
}

func (s *Store) saveIndices() error {
	for name, ix := range map[string]index{
		categoryIndexFile: s.category,
		severityIndexFile: s.severity,
		statusIndexFile:   s.status,
	} {
		data, err := json.MarshalIndent(ix, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal index %s: %w", name, err)
		}
		if err := writeAtomic(filepath.Join(s.indicesDir, name), data); err != nil {
			return fmt.Errorf("write index %s: %w", name, err)
		}
	}
	return nil
}

// writeAtomic writes via a temp file and rename so readers never observe a
// partial document
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
