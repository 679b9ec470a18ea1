package scraper

import (
	"encoding/json"
	"fmt"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// MaxReportBytes caps the accepted stdout document size. Output beyond the
// cap is a protocol violation, classified as invalid output rather than
// parsed partially.
const MaxReportBytes = 8 << 20 // 8 MiB

// ══════════════════════════════════════════════════════════════════════════════
// SCRAPER OUTPUT SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

// ReportDTO is the structured document the discovery subprocess writes to
// stdout: a success flag plus discovered lesson records, or a failure flag
// plus an error message. Anything else is a protocol violation.
type ReportDTO struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Lessons []LessonDTO `json:"lessons,omitempty"`
}

// LessonDTO is one discovered lesson record.
type LessonDTO struct {
	LessonID    string `json:"lesson_id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	HasQuiz     bool   `json:"has_quiz"`
	HasPDF      bool   `json:"has_pdf"`

	// XP is the reward declared by the source; 0 means unspecified and
	// the mapper applies the default.
	XP int `json:"xp,omitempty"`

	// QuizData is the embedded quiz payload, present when HasQuiz is set.
	QuizData *QuizDataDTO `json:"quiz_data,omitempty"`
}

// QuizDataDTO mirrors the quiz payload structure on the wire.
type QuizDataDTO struct {
	Title     string        `json:"title"`
	Questions []QuestionDTO `json:"questions"`
}

// QuestionDTO is one multiple-choice question on the wire.
type QuestionDTO struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STRICT PARSING
// ══════════════════════════════════════════════════════════════════════════════

// ParseReport validates and decodes the subprocess stdout document. Every
// failure mode (truncated, malformed, oversized, schema-violating) returns
// shared.ErrInvalidScraperOutput; the caller classifies it as a failed run,
// never as a crash.
func ParseReport(data []byte) (*ReportDTO, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("scraper", "ParseReport", shared.ErrInvalidScraperOutput,
			"empty output")
	}
	if len(data) > MaxReportBytes {
		return nil, shared.NewDomainError("scraper", "ParseReport", shared.ErrInvalidScraperOutput,
			fmt.Sprintf("output exceeds %d bytes", MaxReportBytes))
	}

	var report ReportDTO
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, shared.WrapDomainError("scraper", "ParseReport", shared.ErrInvalidScraperOutput,
			"malformed JSON", err)
	}

	if !report.Success {
		if report.Error == "" {
			return nil, shared.NewDomainError("scraper", "ParseReport", shared.ErrInvalidScraperOutput,
				"failure report without error message")
		}
		return &report, nil
	}

	for i, lesson := range report.Lessons {
		if err := validateLesson(i, lesson); err != nil {
			return nil, err
		}
	}
	return &report, nil
}

// validateLesson checks one lesson record against the schema invariants.
func validateLesson(i int, lesson LessonDTO) error {
	if lesson.LessonID == "" {
		return invalidLesson(i, "missing lesson_id")
	}
	if lesson.ModuleID == "" {
		return invalidLesson(i, "missing module_id")
	}
	if lesson.Title == "" {
		return invalidLesson(i, "missing title")
	}
	if lesson.XP < 0 {
		return invalidLesson(i, "negative xp")
	}
	if lesson.HasQuiz {
		if lesson.QuizData == nil {
			return invalidLesson(i, "has_quiz set without quiz_data")
		}
		if len(lesson.QuizData.Questions) == 0 {
			return invalidLesson(i, "quiz_data has no questions")
		}
		for qi, q := range lesson.QuizData.Questions {
			if len(q.Options) < 2 {
				return invalidLesson(i, fmt.Sprintf("question %d has fewer than 2 options", qi))
			}
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return invalidLesson(i, fmt.Sprintf("question %d has out-of-range correct index", qi))
			}
		}
	}
	return nil
}

func invalidLesson(i int, msg string) error {
	return shared.NewDomainError("scraper", "ParseReport", shared.ErrInvalidScraperOutput,
		fmt.Sprintf("lesson %d: %s", i, msg))
}
