package services

import "time"

// AnswerStore abstracts the persistence operations required by AnswerService.
type AnswerStore interface {
	GetQuestion(id string) (*QuestionRef, error)
	GetOption(id string) (*OptionRef, error)
	ReplaceAnswers(userID, surveyID string, answers []*SavedAnswer) error
}

// QuestionRef captures the fields the save workflow checks on a question.
type QuestionRef struct {
	QID      string
	SurveyID string
}

// OptionRef captures the fields the save workflow checks on an option.
type OptionRef struct {
	OID        string
	QuestionID string
	Score      int
}

// AnswerInput mirrors one inbound answer record. A nil OptionID is an
// explicit "answered with no choice".
type AnswerInput struct {
	QuestionID string
	OptionID   *string
}

// SavedAnswer is the record handed to the store. Score is copied from
// the referenced option at save time, never trusted from the client.
type SavedAnswer struct {
	UserID     string
	SurveyID   string
	QuestionID string
	OptionID   *string
	Score      *int
	SavedAt    time.Time
}

// AnswerService hosts the batch answer-save workflow: one submission
// replaces the user's previous answer set for the survey.
type AnswerService struct {
	store AnswerStore
	now   func() time.Time
}

func NewAnswerService(store AnswerStore) *AnswerService {
	return &AnswerService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save validates and persists the batch for one (user, survey) pair and
// returns how many records were stored. Answers referencing questions
// outside the survey, or options outside their question, are skipped.
func (s *AnswerService) Save(userID, surveyID string, inputs []AnswerInput) (int, error) {
	if userID == "" {
		return 0, NewUnauthorizedError("login required")
	}
	if surveyID == "" {
		return 0, NewInvalidError("surveyId required")
	}

	savedAt := s.now()
	saved := make([]*SavedAnswer, 0, len(inputs))
	for _, in := range inputs {
		if in.QuestionID == "" {
			continue
		}
		q, err := s.store.GetQuestion(in.QuestionID)
		if err != nil {
			return 0, err
		}
		if q == nil || q.SurveyID != surveyID {
			continue
		}

		sa := &SavedAnswer{UserID: userID, SurveyID: surveyID, QuestionID: in.QuestionID, SavedAt: savedAt}
		if in.OptionID != nil {
			opt, err := s.store.GetOption(*in.OptionID)
			if err != nil {
				return 0, err
			}
			if opt == nil || opt.QuestionID != in.QuestionID {
				continue
			}
			oid := opt.OID
			score := opt.Score
			sa.OptionID = &oid
			sa.Score = &score
		}
		saved = append(saved, sa)
	}

	if err := s.store.ReplaceAnswers(userID, surveyID, saved); err != nil {
		return 0, err
	}
	return len(saved), nil
}
