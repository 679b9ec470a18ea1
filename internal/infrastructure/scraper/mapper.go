package scraper

import (
	"fmt"
	"time"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
)

// AssetBaseURL is where lesson media is hosted. Videos and PDF supports are
// published under predictable paths keyed by lesson id.
const AssetBaseURL = "https://chahbg.github.io/infoapp-assets"

// MapLessons converts validated wire records into catalog lessons, filling
// the derived fields the subprocess does not carry: media URLs and the
// default XP reward.
func MapLessons(report *ReportDTO, scrapedAt time.Time) []catalog.Lesson {
	lessons := make([]catalog.Lesson, 0, len(report.Lessons))
	for _, dto := range report.Lessons {
		lessons = append(lessons, mapLesson(dto, scrapedAt))
	}
	return lessons
}

func mapLesson(dto LessonDTO, scrapedAt time.Time) catalog.Lesson {
	lesson := catalog.Lesson{
		LessonID:    dto.LessonID,
		ModuleID:    dto.ModuleID,
		Title:       dto.Title,
		Description: dto.Description,
		VideoPath:   fmt.Sprintf("%s/videos/%s.mp4", AssetBaseURL, dto.LessonID),
		HasQuiz:     dto.HasQuiz,
		XP:          dto.XP,
		ScrapedAt:   scrapedAt,
	}
	if lesson.XP == 0 {
		lesson.XP = catalog.DefaultLessonXP
	}
	if dto.HasPDF {
		lesson.PDFPath = fmt.Sprintf("%s/pdf/%s.pdf", AssetBaseURL, dto.LessonID)
	}
	if dto.HasQuiz && dto.QuizData != nil {
		lesson.Quiz = mapQuiz(dto.QuizData)
	}
	return lesson
}

func mapQuiz(dto *QuizDataDTO) *catalog.QuizPayload {
	payload := &catalog.QuizPayload{
		Title:     dto.Title,
		Questions: make([]catalog.Question, 0, len(dto.Questions)),
	}
	for _, q := range dto.Questions {
		payload.Questions = append(payload.Questions, catalog.Question{
			Prompt:  q.Question,
			Options: q.Options,
			Correct: q.Correct,
		})
	}
	return payload
}
