package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"examguard/internal/config"
	"examguard/internal/models"
)

// detectionModels maps each event type to the detection model label shown in
// legal documents. Unknown types fall back to a generic label.
var detectionModels = map[models.EventType]string{
	models.EventFaceLost:         "Facial Presence Tracker v2",
	models.EventMultipleFaces:    "Multi-Face Discrimination Network",
	models.EventAudioAnomaly:     "Acoustic Anomaly Classifier",
	models.EventGazeDeviation:    "Gaze Vector Estimation Model",
	models.EventSuspiciousObject: "Object Recognition Pipeline",
}

const detectionModelFallback = "General Anomaly Detector"

// legalImplications maps (type, severity) to the implication text used in
// the per-incident detail. The table is total over the enumerated values;
// anything outside falls back per severity, then to a generic sentence.
var legalImplications = map[models.EventType]map[models.EventSeverity]string{
	models.EventFaceLost: {
		models.SeverityLow:      "Brief absence from camera view; insufficient alone to establish misconduct.",
		models.SeverityMedium:   "Repeated absence from camera view; may indicate avoidance of supervision.",
		models.SeverityHigh:     "Sustained absence from camera view during assessment; consistent with unsupervised activity.",
		models.SeverityCritical: "Prolonged disappearance from supervision; strong indicator of examination protocol violation.",
	},
	models.EventMultipleFaces: {
		models.SeverityLow:      "Momentary appearance of a second person; may be incidental.",
		models.SeverityMedium:   "Additional person detected in the examination environment.",
		models.SeverityHigh:     "Repeated presence of unauthorized persons; consistent with assisted completion.",
		models.SeverityCritical: "Sustained presence of unauthorized persons; strong indicator of third-party assistance.",
	},
	models.EventAudioAnomaly: {
		models.SeverityLow:      "Minor background noise; environmental causes cannot be excluded.",
		models.SeverityMedium:   "Speech-like audio detected during a silent assessment phase.",
		models.SeverityHigh:     "Repeated conversational audio; consistent with verbal assistance.",
		models.SeverityCritical: "Sustained dialogue detected; strong indicator of real-time coaching.",
	},
	models.EventGazeDeviation: {
		models.SeverityLow:      "Brief off-screen glance; within normal behavioral variance.",
		models.SeverityMedium:   "Recurring off-screen gaze pattern; may indicate reference to disallowed material.",
		models.SeverityHigh:     "Systematic off-screen gaze; consistent with use of secondary materials.",
		models.SeverityCritical: "Persistent fixed off-screen gaze; strong indicator of an external answer source.",
	},
	models.EventSuspiciousObject: {
		models.SeverityLow:      "Unidentified object briefly visible; relevance undetermined.",
		models.SeverityMedium:   "Object resembling a disallowed device detected in frame.",
		models.SeverityHigh:     "Disallowed device repeatedly visible during assessment.",
		models.SeverityCritical: "Active use of a disallowed device observed; strong indicator of misconduct.",
	},
}

var legalImplicationBySeverity = map[models.EventSeverity]string{
	models.SeverityLow:      "Low-severity anomaly recorded; evidentiary weight is minimal in isolation.",
	models.SeverityMedium:   "Medium-severity anomaly recorded; to be weighed with surrounding incidents.",
	models.SeverityHigh:     "High-severity anomaly recorded; materially relevant to the integrity assessment.",
	models.SeverityCritical: "Critical anomaly recorded; individually sufficient to warrant formal review.",
}

const legalImplicationFallback = "Anomalous behavior recorded by the automated proctoring system; manual review advised."

// legalTemplates is one localized wording set. Localization changes only the
// textual wrapping, never the computed values.
type legalTemplates struct {
	Title             string
	ExecutiveSummary  string // name, total events, pattern text
	IncidentNarrative string // timestamp, detection model, severity
	SectionSubject    string
	SectionMetadata   string
	SectionIncidents  string
	SectionAssessment string
	SectionSignature  string
	LabelStudentID    string
	LabelStudentName  string
	LabelCaseNumber   string
	LabelGeneratedAt  string
	LabelTotalEvents  string
	LabelRecordings   string
	LabelDuration     string
	LabelRetention    string
	LabelRiskScore    string
	LabelPattern      string
	LabelEvidence     string
	PatternText       map[models.RiskPattern]string
	EvidenceText      map[models.EvidenceStrength]string
	IssuedBy          string
	Notice            string
}

var legalTemplateSets = map[string]legalTemplates{
	"en": {
		Title:             "ACADEMIC INTEGRITY INCIDENT REPORT",
		ExecutiveSummary:  "During the supervised assessment of %s, the automated proctoring system recorded %d flagged incident(s). The observed behavior is classified as %s.",
		IncidentNarrative: "At %s, the %s flagged a %s-severity anomaly.",
		SectionSubject:    "SUBJECT INFORMATION",
		SectionMetadata:   "TECHNICAL METADATA",
		SectionIncidents:  "INCIDENT DETAIL",
		SectionAssessment: "LEGAL ASSESSMENT",
		SectionSignature:  "CERTIFICATION",
		LabelStudentID:    "Student ID",
		LabelStudentName:  "Student name",
		LabelCaseNumber:   "Case number",
		LabelGeneratedAt:  "Generated at",
		LabelTotalEvents:  "Flagged events",
		LabelRecordings:   "Recordings on file",
		LabelDuration:     "Total recorded duration (s)",
		LabelRetention:    "Retention window (h)",
		LabelRiskScore:    "Overall risk score",
		LabelPattern:      "Behavioral pattern",
		LabelEvidence:     "Evidence strength",
		PatternText: map[models.RiskPattern]string{
			models.PatternIsolated:   "isolated irregularities",
			models.PatternModerate:   "a moderate pattern of irregularities",
			models.PatternSystematic: "a systematic pattern of irregularities",
		},
		EvidenceText: map[models.EvidenceStrength]string{
			models.EvidenceWeak:       "The collected evidence is weak and does not support formal action on its own.",
			models.EvidenceModerate:   "The collected evidence is moderate and warrants closer review.",
			models.EvidenceStrong:     "The collected evidence is strong and supports initiating a formal integrity proceeding.",
			models.EvidenceConclusive: "The collected evidence is conclusive within the limits of automated detection.",
		},
		IssuedBy: "ExamGuard Automated Proctoring Service",
		Notice:   "This document was generated automatically from detection-system output. It is not a legal determination of misconduct.",
	},
	"es": {
		Title:             "INFORME DE INCIDENTES DE INTEGRIDAD ACADÉMICA",
		ExecutiveSummary:  "Durante la evaluación supervisada de %s, el sistema automático de supervisión registró %d incidente(s). El comportamiento observado se clasifica como %s.",
		IncidentNarrative: "A las %s, el modelo %s señaló una anomalía de severidad %s.",
		SectionSubject:    "INFORMACIÓN DEL SUJETO",
		SectionMetadata:   "METADATOS TÉCNICOS",
		SectionIncidents:  "DETALLE DE INCIDENTES",
		SectionAssessment: "EVALUACIÓN LEGAL",
		SectionSignature:  "CERTIFICACIÓN",
		LabelStudentID:    "ID del estudiante",
		LabelStudentName:  "Nombre del estudiante",
		LabelCaseNumber:   "Número de caso",
		LabelGeneratedAt:  "Generado el",
		LabelTotalEvents:  "Eventos señalados",
		LabelRecordings:   "Grabaciones archivadas",
		LabelDuration:     "Duración total grabada (s)",
		LabelRetention:    "Ventana de retención (h)",
		LabelRiskScore:    "Puntuación de riesgo global",
		LabelPattern:      "Patrón de comportamiento",
		LabelEvidence:     "Solidez de la evidencia",
		PatternText: map[models.RiskPattern]string{
			models.PatternIsolated:   "irregularidades aisladas",
			models.PatternModerate:   "un patrón moderado de irregularidades",
			models.PatternSystematic: "un patrón sistemático de irregularidades",
		},
		EvidenceText: map[models.EvidenceStrength]string{
			models.EvidenceWeak:       "La evidencia recopilada es débil y no respalda por sí sola una acción formal.",
			models.EvidenceModerate:   "La evidencia recopilada es moderada y justifica una revisión más detallada.",
			models.EvidenceStrong:     "La evidencia recopilada es sólida y respalda iniciar un procedimiento formal de integridad.",
			models.EvidenceConclusive: "La evidencia recopilada es concluyente dentro de los límites de la detección automática.",
		},
		IssuedBy: "Servicio de Supervisión Automática ExamGuard",
		Notice:   "Este documento se generó automáticamente a partir de la salida del sistema de detección. No constituye una determinación legal de mala conducta.",
	},
	"fr": {
		Title:             "RAPPORT D'INCIDENTS D'INTÉGRITÉ ACADÉMIQUE",
		ExecutiveSummary:  "Pendant l'évaluation surveillée de %s, le système de surveillance automatique a enregistré %d incident(s). Le comportement observé est classé comme %s.",
		IncidentNarrative: "À %s, le modèle %s a signalé une anomalie de sévérité %s.",
		SectionSubject:    "INFORMATIONS SUR LE SUJET",
		SectionMetadata:   "MÉTADONNÉES TECHNIQUES",
		SectionIncidents:  "DÉTAIL DES INCIDENTS",
		SectionAssessment: "ÉVALUATION JURIDIQUE",
		SectionSignature:  "CERTIFICATION",
		LabelStudentID:    "ID de l'étudiant",
		LabelStudentName:  "Nom de l'étudiant",
		LabelCaseNumber:   "Numéro de dossier",
		LabelGeneratedAt:  "Généré le",
		LabelTotalEvents:  "Événements signalés",
		LabelRecordings:   "Enregistrements archivés",
		LabelDuration:     "Durée totale enregistrée (s)",
		LabelRetention:    "Fenêtre de rétention (h)",
		LabelRiskScore:    "Score de risque global",
		LabelPattern:      "Schéma comportemental",
		LabelEvidence:     "Force des preuves",
		PatternText: map[models.RiskPattern]string{
			models.PatternIsolated:   "des irrégularités isolées",
			models.PatternModerate:   "un schéma modéré d'irrégularités",
			models.PatternSystematic: "un schéma systématique d'irrégularités",
		},
		EvidenceText: map[models.EvidenceStrength]string{
			models.EvidenceWeak:       "Les preuves recueillies sont faibles et ne justifient pas à elles seules une action formelle.",
			models.EvidenceModerate:   "Les preuves recueillies sont modérées et justifient un examen approfondi.",
			models.EvidenceStrong:     "Les preuves recueillies sont solides et justifient l'ouverture d'une procédure formelle d'intégrité.",
			models.EvidenceConclusive: "Les preuves recueillies sont concluantes dans les limites de la détection automatique.",
		},
		IssuedBy: "Service de Surveillance Automatique ExamGuard",
		Notice:   "Ce document a été généré automatiquement à partir des sorties du système de détection. Il ne constitue pas une détermination juridique de faute.",
	},
}

// LegalReportService turns a subject's events into a narrative legal
// document plus a flattened text rendering of the same structure.
type LegalReportService struct {
	retention *RetentionService
	cfg       *config.Config
	now       func() time.Time
	randInt   func(n int) int
}

// NewLegalReportService creates the legal document formatter.
func NewLegalReportService(retention *RetentionService, cfg *config.Config) *LegalReportService {
	return &LegalReportService{
		retention: retention,
		cfg:       cfg,
		now:       time.Now,
		randInt:   rand.Intn,
	}
}

// SetClock overrides the time source. Tests only.
func (s *LegalReportService) SetClock(now func() time.Time) {
	s.now = now
}

// SetRand overrides the case-number suffix source. Tests only.
func (s *LegalReportService) SetRand(randInt func(n int) int) {
	s.randInt = randInt
}

// caseNumber builds PREFIX-YYYYMMDD-NNNN. The suffix is cosmetic: the case
// number is not a primary key and collisions are acceptable.
func (s *LegalReportService) caseNumber(now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", s.cfg.CaseNumberPrefix, now.Format("20060102"), s.randInt(10000))
}

func templatesFor(lang string) (legalTemplates, string) {
	if tpl, ok := legalTemplateSets[lang]; ok {
		return tpl, lang
	}
	return legalTemplateSets["en"], "en"
}

// DetectionModelFor returns the detection model label for an event type,
// with a generic fallback for unknown types.
func DetectionModelFor(t models.EventType) string {
	if label, ok := detectionModels[t]; ok {
		return label
	}
	return detectionModelFallback
}

// ImplicationFor returns the legal implication text for a type/severity
// pair. The lookup is total: unknown pairs degrade to the severity default,
// then to a generic sentence, never to an empty string.
func ImplicationFor(t models.EventType, sev models.EventSeverity) string {
	if bySeverity, ok := legalImplications[t]; ok {
		if text, ok := bySeverity[sev]; ok {
			return text
		}
	}
	if text, ok := legalImplicationBySeverity[sev]; ok {
		return text
	}
	return legalImplicationFallback
}

// ClassifyPattern labels the event volume: >8 systematic, >4 moderate,
// otherwise isolated.
func ClassifyPattern(eventCount int) models.RiskPattern {
	switch {
	case eventCount > 8:
		return models.PatternSystematic
	case eventCount > 4:
		return models.PatternModerate
	default:
		return models.PatternIsolated
	}
}

// ClassifyEvidence grades evidence strength from critical/high counts.
func ClassifyEvidence(criticalEvents, highEvents int) models.EvidenceStrength {
	switch {
	case criticalEvents > 2:
		return models.EvidenceConclusive
	case criticalEvents > 0 || highEvents > 3:
		return models.EvidenceStrong
	case highEvents > 0:
		return models.EvidenceModerate
	default:
		return models.EvidenceWeak
	}
}

// Generate builds the structured legal report for one subject from the
// currently unexpired events and recordings.
func (s *LegalReportService) Generate(ctx context.Context, studentID, studentName, lang string) (*models.LegalReport, error) {
	if studentID == "" {
		return nil, models.NewValidationError("student_id", "required")
	}

	events, err := s.retention.GetEventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	recordings, err := s.retention.GetActiveRecordings(ctx)
	if err != nil {
		return nil, err
	}

	tpl, lang := templatesFor(lang)
	now := s.now()

	report := &models.LegalReport{
		CaseNumber:  s.caseNumber(now),
		Language:    lang,
		GeneratedAt: now,
		Title:       tpl.Title,
		Subject: models.LegalSubject{
			StudentID:   studentID,
			StudentName: studentName,
		},
		Incidents: []models.LegalIncident{},
	}

	var scoreSum float64
	var scoreCount, criticalEvents, highEvents int
	for i := range events {
		ev := &events[i]

		if !ev.Type.IsValid() || !ev.Severity.IsValid() {
			// Render anomaly: fall back per field, keep the document whole.
			log.Printf("⚠️  [LEGAL] Event %s has unrecognized type=%q severity=%q; using fallback text",
				ev.EventID, ev.Type, ev.Severity)
		}

		switch ev.Severity {
		case models.SeverityCritical:
			criticalEvents++
		case models.SeverityHigh:
			highEvents++
		}

		if v, err := strconv.ParseFloat(ev.Score, 64); err == nil {
			scoreSum += v
			scoreCount++
		}

		model := DetectionModelFor(ev.Type)
		report.Incidents = append(report.Incidents, models.LegalIncident{
			Sequence:         i + 1,
			Timestamp:        ev.Timestamp,
			Type:             ev.Type,
			Severity:         ev.Severity,
			Score:            ev.Score,
			Description:      ev.Description,
			DetectionModel:   model,
			LegalImplication: ImplicationFor(ev.Type, ev.Severity),
			Narrative:        fmt.Sprintf(tpl.IncidentNarrative, ev.Timestamp.Format(time.RFC3339), model, ev.Severity),
		})
	}

	pattern := ClassifyPattern(len(events))
	strength := ClassifyEvidence(criticalEvents, highEvents)
	report.Assessment = models.LegalAssessment{
		OverallRiskScore: FormatScore(AverageScore(scoreSum, scoreCount)),
		Pattern:          pattern,
		PatternText:      tpl.PatternText[pattern],
		EvidenceStrength: strength,
		EvidenceText:     tpl.EvidenceText[strength],
		CriticalEvents:   criticalEvents,
		HighEvents:       highEvents,
	}

	report.ExecutiveSummary = fmt.Sprintf(tpl.ExecutiveSummary, studentName, len(events), tpl.PatternText[pattern])

	report.Metadata = models.LegalMetadata{
		TotalEvents:    len(events),
		RetentionHours: s.cfg.RetentionHours,
	}
	if len(events) > 0 {
		// events arrive newest first
		report.Metadata.LastEvent = events[0].Timestamp
		report.Metadata.FirstEvent = events[len(events)-1].Timestamp
	}
	for i := range recordings {
		if recordings[i].StudentID == studentID {
			report.Metadata.TotalRecordings++
			report.Metadata.TotalDuration += recordings[i].Duration
		}
	}

	report.Signature = models.LegalSignature{
		IssuedBy: tpl.IssuedBy,
		IssuedAt: now,
		Notice:   tpl.Notice,
	}

	log.Printf("⚖️  [LEGAL] Generated case %s for student %s (%d incidents, %s evidence)",
		report.CaseNumber, studentID, len(report.Incidents), strength)

	return report, nil
}

// RenderText flattens a structured legal report into plain text. It is a
// pure projection: every value comes from the report object, so the two
// representations cannot disagree.
func (s *LegalReportService) RenderText(report *models.LegalReport) string {
	tpl, _ := templatesFor(report.Language)

	var b strings.Builder
	rule := strings.Repeat("=", 72)
	thinRule := strings.Repeat("-", 72)

	b.WriteString(rule + "\n")
	b.WriteString(report.Title + "\n")
	b.WriteString(rule + "\n\n")

	b.WriteString(fmt.Sprintf("%s: %s\n", tpl.LabelCaseNumber, report.CaseNumber))
	b.WriteString(fmt.Sprintf("%s: %s\n\n", tpl.LabelGeneratedAt, report.GeneratedAt.Format(time.RFC3339)))

	b.WriteString(report.ExecutiveSummary + "\n\n")

	b.WriteString(tpl.SectionSubject + "\n" + thinRule + "\n")
	b.WriteString(fmt.Sprintf("%s: %s\n", tpl.LabelStudentID, report.Subject.StudentID))
	b.WriteString(fmt.Sprintf("%s: %s\n\n", tpl.LabelStudentName, report.Subject.StudentName))

	b.WriteString(tpl.SectionMetadata + "\n" + thinRule + "\n")
	b.WriteString(fmt.Sprintf("%s: %d\n", tpl.LabelTotalEvents, report.Metadata.TotalEvents))
	b.WriteString(fmt.Sprintf("%s: %d\n", tpl.LabelRecordings, report.Metadata.TotalRecordings))
	b.WriteString(fmt.Sprintf("%s: %d\n", tpl.LabelDuration, report.Metadata.TotalDuration))
	b.WriteString(fmt.Sprintf("%s: %d\n\n", tpl.LabelRetention, report.Metadata.RetentionHours))

	b.WriteString(tpl.SectionIncidents + "\n" + thinRule + "\n")
	for i := range report.Incidents {
		inc := &report.Incidents[i]
		b.WriteString(fmt.Sprintf("#%d [%s] %s / %s (score %s)\n",
			inc.Sequence, inc.Timestamp.Format(time.RFC3339), inc.Type, inc.Severity, inc.Score))
		b.WriteString("  " + inc.Narrative + "\n")
		if inc.Description != "" {
			b.WriteString("  " + inc.Description + "\n")
		}
		b.WriteString("  " + inc.LegalImplication + "\n")
	}
	b.WriteString("\n")

	b.WriteString(tpl.SectionAssessment + "\n" + thinRule + "\n")
	b.WriteString(fmt.Sprintf("%s: %s\n", tpl.LabelRiskScore, report.Assessment.OverallRiskScore))
	b.WriteString(fmt.Sprintf("%s: %s\n", tpl.LabelPattern, report.Assessment.PatternText))
	b.WriteString(fmt.Sprintf("%s: %s\n", tpl.LabelEvidence, report.Assessment.EvidenceStrength))
	b.WriteString(report.Assessment.EvidenceText + "\n\n")

	b.WriteString(tpl.SectionSignature + "\n" + thinRule + "\n")
	b.WriteString(report.Signature.IssuedBy + "\n")
	b.WriteString(report.Signature.IssuedAt.Format(time.RFC3339) + "\n")
	b.WriteString(report.Signature.Notice + "\n")

	return b.String()
}
