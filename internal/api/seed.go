package api

import "time"

// Seed inserts a sample public survey for local development and returns
// its id. Timestamps are staggered so clients have a real order to
// impose.
func Seed(store Store) string {
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	store.AddUser(&User{ID: "u-sample", Email: "sample@mindlab.local", CreatedAt: base})
	store.AddSurvey(&Survey{
		SID:         "SAMPLE",
		UserID:      "u-sample",
		Title:       "Weekly mood check",
		Description: "Two quick questions about your week.",
		Public:      true,
		CreatedAt:   base,
	})

	questions := []*Question{
		{QID: "SQ1", SurveyID: "SAMPLE", Text: "How was your week overall?", CreatedAt: base.Add(1 * time.Second)},
		{QID: "SQ2", SurveyID: "SAMPLE", Text: "How well did you sleep?", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, q := range questions {
		store.AddQuestion(q)
	}
	options := []*Option{
		{OID: "SQ1O1", QuestionID: "SQ1", Text: "Rough", Score: 1, CreatedAt: base.Add(3 * time.Second)},
		{OID: "SQ1O2", QuestionID: "SQ1", Text: "Fine", Score: 2, CreatedAt: base.Add(4 * time.Second)},
		{OID: "SQ1O3", QuestionID: "SQ1", Text: "Great", Score: 3, CreatedAt: base.Add(5 * time.Second)},
		{OID: "SQ2O1", QuestionID: "SQ2", Text: "Poorly", Score: 1, CreatedAt: base.Add(6 * time.Second)},
		{OID: "SQ2O2", QuestionID: "SQ2", Text: "Well", Score: 2, CreatedAt: base.Add(7 * time.Second)},
	}
	for _, o := range options {
		store.AddOption(o)
	}
	return "SAMPLE"
}
