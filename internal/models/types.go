package models

import "time"

// SurveySummary is one entry in a catalog listing.
type SurveySummary struct {
	SID   string `json:"s_id"`
	Title string `json:"title"`
}

// Option is a selectable choice for a question. Immutable from the
// answering client's perspective.
type Option struct {
	OID       string    `json:"o_id"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question is a prompt within a survey. Selected is session-local state
// derived from the saved answer (or a click); it is never persisted as-is.
type Question struct {
	QID       string    `json:"q_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Options   []Option  `json:"options"`
	Selected  *Option   `json:"-"`
}

// SurveyData is the structure payload returned by the getSurveyData operation.
type SurveyData struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// Answer is the persisted record of which option (if any) a user chose
// for a question. A nil OptionID means "answered with no choice", which
// is distinct from no answer record existing at all.
type Answer struct {
	QuestionID string  `json:"questionId"`
	OptionID   *string `json:"optionId"`
	Score      *int    `json:"score"`
}
