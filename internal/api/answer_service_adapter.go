package api

import (
	"github.com/mindlab-app/mindlab/internal/services"
)

type answerStoreAdapter struct {
	store Store
}

func newAnswerStoreAdapter(store Store) services.AnswerStore {
	return &answerStoreAdapter{store: store}
}

func (a *answerStoreAdapter) GetQuestion(id string) (*services.QuestionRef, error) {
	q := a.store.GetQuestion(id)
	if q == nil {
		return nil, nil
	}
	return &services.QuestionRef{QID: q.QID, SurveyID: q.SurveyID}, nil
}

func (a *answerStoreAdapter) GetOption(id string) (*services.OptionRef, error) {
	o := a.store.GetOption(id)
	if o == nil {
		return nil, nil
	}
	return &services.OptionRef{OID: o.OID, QuestionID: o.QuestionID, Score: o.Score}, nil
}

func (a *answerStoreAdapter) ReplaceAnswers(userID, surveyID string, answers []*services.SavedAnswer) error {
	out := make([]*Answer, 0, len(answers))
	for _, sa := range answers {
		out = append(out, &Answer{
			UserID:     sa.UserID,
			SurveyID:   sa.SurveyID,
			QuestionID: sa.QuestionID,
			OptionID:   sa.OptionID,
			Score:      sa.Score,
			SavedAt:    sa.SavedAt,
		})
	}
	a.store.ReplaceAnswers(userID, surveyID, out)
	return nil
}

var _ services.AnswerStore = (*answerStoreAdapter)(nil)
