package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithStudent returns a logger with subject context fields attached.
// Use this for all logging tied to a specific examinee.
func WithStudent(studentID, studentName string) *slog.Logger {
	return slog.With(
		"student_id", studentID,
		"student_name", studentName,
	)
}

// WithCase returns a logger scoped to a generated legal case document.
func WithCase(logger *slog.Logger, caseNumber, language string) *slog.Logger {
	return logger.With(
		"case_number", caseNumber,
		"language", language,
	)
}
