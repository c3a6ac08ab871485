package domain

import "time"

// ChangeType describes what happened to a standard section upstream
type ChangeType string

const (
	ChangeTypeNew        ChangeType = "new"
	ChangeTypeUpdated    ChangeType = "updated"
	ChangeTypeSuperseded ChangeType = "superseded"
)

// StandardUpdate is one section change published by the standards provider
type StandardUpdate struct {
	Code          string     `json:"code"`
	Section       string     `json:"section"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Version       string     `json:"version"`
	EffectiveDate string     `json:"effective_date"`
	ChangeType    ChangeType `json:"change_type"`
	ChangeNotes   []string   `json:"change_notes,omitempty"`
}

// DocumentStatus is the lifecycle state of a knowledge document
type DocumentStatus string

const (
	DocumentStatusCurrent    DocumentStatus = "current"
	DocumentStatusSuperseded DocumentStatus = "superseded"
)

// DocumentTypeStandard tags documents derived from standard updates
const DocumentTypeStandard = "standard"

// KnowledgeDocument is the persisted form of a standard section, keyed by (Code, Version)
type KnowledgeDocument struct {
	Code          string         `json:"code"`
	Version       string         `json:"version"`
	Name          string         `json:"name"`
	FullText      string         `json:"full_text"`
	Section       string         `json:"section"`
	EffectiveDate string         `json:"effective_date"`
	DocumentType  string         `json:"document_type"`
	Status        DocumentStatus `json:"status"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewKnowledgeDocument maps a standard update onto a current document
func NewKnowledgeDocument(u StandardUpdate, now time.Time) *KnowledgeDocument {
	return &KnowledgeDocument{
		Code:          u.Code,
		Version:       u.Version,
		Name:          u.Title,
		FullText:      u.Content,
		Section:       u.Section,
		EffectiveDate: u.EffectiveDate,
		DocumentType:  DocumentTypeStandard,
		Status:        DocumentStatusCurrent,
		UpdatedAt:     now,
	}
}

// CertificationStatus is the standing of a supplier certificate
type CertificationStatus string

const (
	CertificationValid     CertificationStatus = "valid"
	CertificationExpired   CertificationStatus = "expired"
	CertificationSuspended CertificationStatus = "suspended"
	CertificationRevoked   CertificationStatus = "revoked"
)

// AuditResult is the outcome of a supplier audit
type AuditResult string

const (
	AuditPassed      AuditResult = "passed"
	AuditFailed      AuditResult = "failed"
	AuditConditional AuditResult = "conditional"
)

// Certification is a supplier certificate reported by the certification provider
type Certification struct {
	SupplierID    string              `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name"`
	CertType      string              `json:"cert_type"`
	CertBody      string              `json:"cert_body"`
	CertNumber    string              `json:"cert_number"`
	IssueDate     string              `json:"issue_date"`
	ExpiryDate    string              `json:"expiry_date"`
	Status        CertificationStatus `json:"status"`
	AuditDate     string              `json:"audit_date,omitempty"`
	AuditResult   AuditResult         `json:"audit_result,omitempty"`
	NextAuditDate string              `json:"next_audit_date,omitempty"`
}

// PerformanceMetric is a supplier scorecard reported by the certification provider
type PerformanceMetric struct {
	SupplierID      string  `json:"supplier_id"`
	SupplierName    string  `json:"supplier_name"`
	TotalIssues     int     `json:"total_issues"`
	CriticalIssues  int     `json:"critical_issues"`
	AvgResponseDays float64 `json:"avg_response_days"`
	OnTimeRate      float64 `json:"on_time_rate"`
	QualityScore    float64 `json:"quality_score"`
	AsOf            string  `json:"as_of"`
}

// BenchmarkPoint is an industry benchmark figure for one metric, sector and period
type BenchmarkPoint struct {
	MetricName  string  `json:"metric_name"`
	Category    string  `json:"category"`
	Sector      string  `json:"sector"`
	Value       float64 `json:"value"`
	P25         float64 `json:"p25"`
	P50         float64 `json:"p50"`
	P75         float64 `json:"p75"`
	P90         float64 `json:"p90"`
	SampleSize  int     `json:"sample_size"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Source      string  `json:"source"`
}

// Key returns the natural key the point is upserted on
func (b BenchmarkPoint) Key() BenchmarkKey {
	return BenchmarkKey{
		MetricName:  b.MetricName,
		Sector:      b.Sector,
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
	}
}

// BenchmarkKey identifies a benchmark row
type BenchmarkKey struct {
	MetricName  string
	Sector      string
	PeriodStart string
	PeriodEnd   string
}

// BenchmarkFilter narrows a benchmark fetch. Zero values mean no filter.
type BenchmarkFilter struct {
	Sector      string
	Category    string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}
