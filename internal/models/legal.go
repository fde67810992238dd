package models

import "time"

// RiskPattern is the coarse behavioral classification used in legal reports.
type RiskPattern string

const (
	PatternIsolated   RiskPattern = "isolated"
	PatternModerate   RiskPattern = "moderate"
	PatternSystematic RiskPattern = "systematic"
)

// EvidenceStrength grades the overall evidence by critical/high event counts.
type EvidenceStrength string

const (
	EvidenceWeak       EvidenceStrength = "WEAK"
	EvidenceModerate   EvidenceStrength = "MODERATE"
	EvidenceStrong     EvidenceStrength = "STRONG"
	EvidenceConclusive EvidenceStrength = "CONCLUSIVE"
)

// LegalIncident is one flagged event rendered with its detection-model label
// and severity-dependent legal implication text.
type LegalIncident struct {
	Sequence         int           `json:"sequence"`
	Timestamp        time.Time     `json:"timestamp"`
	Type             EventType     `json:"type"`
	Severity         EventSeverity `json:"severity"`
	Score            string        `json:"score"`
	Description      string        `json:"description"`
	DetectionModel   string        `json:"detection_model"`
	LegalImplication string        `json:"legal_implication"`
	Narrative        string        `json:"narrative"`
}

// LegalAssessment is the computed risk section of a legal report.
type LegalAssessment struct {
	OverallRiskScore string           `json:"overall_risk_score"`
	Pattern          RiskPattern      `json:"pattern"`
	PatternText      string           `json:"pattern_text"`
	EvidenceStrength EvidenceStrength `json:"evidence_strength"`
	EvidenceText     string           `json:"evidence_text"`
	CriticalEvents   int              `json:"critical_events"`
	HighEvents       int              `json:"high_events"`
}

// LegalSubject identifies the examinee the report concerns.
type LegalSubject struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// LegalMetadata is the technical-metadata section of a legal report.
type LegalMetadata struct {
	TotalEvents     int       `json:"total_events"`
	TotalRecordings int       `json:"total_recordings"`
	TotalDuration   int64     `json:"total_duration"`
	RetentionHours  int       `json:"retention_hours"`
	FirstEvent      time.Time `json:"first_event,omitempty"`
	LastEvent       time.Time `json:"last_event,omitempty"`
}

// LegalSignature is the sign-off block at the end of a legal report.
type LegalSignature struct {
	IssuedBy string    `json:"issued_by"`
	IssuedAt time.Time `json:"issued_at"`
	Notice   string    `json:"notice"`
}

// LegalReport is the structured narrative document generated from a
// student's unexpired events and recordings. The plain-text rendering is a
// pure projection of this object and is never derived independently.
type LegalReport struct {
	CaseNumber       string          `json:"case_number"`
	Language         string          `json:"language"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Title            string          `json:"title"`
	ExecutiveSummary string          `json:"executive_summary"`
	Subject          LegalSubject    `json:"subject"`
	Metadata         LegalMetadata   `json:"metadata"`
	Incidents        []LegalIncident `json:"incidents"`
	Assessment       LegalAssessment `json:"assessment"`
	Signature        LegalSignature  `json:"signature"`
}
