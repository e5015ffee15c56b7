package services

import (
	"bytes"
	"encoding/csv"
)

// AnswerRow is one line of the long-format answers export.
type AnswerRow struct {
	UserID       string
	QuestionID   string
	QuestionText string
	OptionID     string
	Score        string
	SavedAt      string
}

// ExportAnswersCSV renders answer rows as long-format CSV with a header.
// Unanswered records carry empty option and score cells.
func ExportAnswersCSV(rows []AnswerRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"user_id", "question_id", "question_text", "option_id", "score", "saved_at"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.UserID, r.QuestionID, r.QuestionText, r.OptionID, r.Score, r.SavedAt}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
