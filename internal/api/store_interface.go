package api

type Store interface {
	AddUser(u *User)
	FindUserByEmail(email string) *User
	GetUser(id string) *User

	AddSurvey(sv *Survey)
	GetSurvey(id string) *Survey
	DeleteSurvey(id string) bool
	ListSurveysByUser(uid string) []*Survey
	ListPublicSurveys() []*Survey

	AddQuestion(q *Question)
	GetQuestion(id string) *Question
	ListQuestions(surveyID string) []*Question

	AddOption(o *Option)
	GetOption(id string) *Option
	ListOptions(questionID string) []*Option

	ReplaceAnswers(userID, surveyID string, answers []*Answer)
	ListAnswers(userID, surveyID string) []*Answer
	ListSurveyAnswers(surveyID string) []*Answer
}

var _ Store = (*memoryStore)(nil)
