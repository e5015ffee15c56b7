package api

import "time"

// User is an account record. Password hashes never leave the server.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo,omitempty"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Survey is the owning record for a question tree. The wire names (s_id,
// createdAt) match what clients decode.
type Survey struct {
	SID         string    `json:"s_id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Public      bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Question struct {
	QID       string    `json:"q_id"`
	SurveyID  string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Option struct {
	OID        string    `json:"o_id"`
	QuestionID string    `json:"-"`
	Text       string    `json:"text"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Answer is one saved record for a (user, question) pair. A nil OptionID
// with a nil Score is an explicit "answered with no choice".
type Answer struct {
	UserID     string    `json:"-"`
	SurveyID   string    `json:"-"`
	QuestionID string    `json:"questionId"`
	OptionID   *string   `json:"optionId"`
	Score      *int      `json:"score"`
	SavedAt    time.Time `json:"-"`
}
