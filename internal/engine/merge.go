package engine

import (
	"sort"

	"github.com/mindlab-app/mindlab/internal/models"
)

// answerState classifies what the server recorded for one question.
type answerState int

const (
	noAnswerRecorded answerState = iota
	answeredWithNoOption
	answeredWithOption
)

// classifyAnswer looks up the saved answer for questionID and reports
// which of the three cases applies, plus the option id for the third.
func classifyAnswer(answers []models.Answer, questionID string) (answerState, string) {
	for _, a := range answers {
		if a.QuestionID != questionID {
			continue
		}
		if a.OptionID == nil {
			return answeredWithNoOption, ""
		}
		return answeredWithOption, *a.OptionID
	}
	return noAnswerRecorded, ""
}

// mergeAnswers attaches saved answers onto the question tree as
// selections. Questions with no record, with an explicit no-choice
// record, or whose recorded option no longer exists end up unselected.
func mergeAnswers(questions []*models.Question, answers []models.Answer) {
	for _, q := range questions {
		state, optionID := classifyAnswer(answers, q.QID)
		q.Selected = nil
		if state != answeredWithOption {
			continue
		}
		for i := range q.Options {
			if q.Options[i].OID == optionID {
				q.Selected = &q.Options[i]
				break
			}
		}
	}
}

// sortStructure orders each question's options and then the question list
// itself by ascending creation timestamp. Stable: ties keep the order the
// server returned them in.
func sortStructure(questions []*models.Question) {
	for _, q := range questions {
		opts := q.Options
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].CreatedAt.Before(opts[j].CreatedAt) })
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].CreatedAt.Before(questions[j].CreatedAt) })
}
