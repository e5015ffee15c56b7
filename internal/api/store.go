package api

import (
	"sync"
)

// memoryStore keeps everything in process memory. Child lists preserve
// insertion order; ordering for display is the client's job.
type memoryStore struct {
	mu                sync.RWMutex
	users             map[string]*User
	usersByEmail      map[string]*User
	surveys           map[string]*Survey
	surveyOrder       []string
	questions         map[string]*Question
	questionsBySurvey map[string][]*Question
	options           map[string]*Option
	optionsByQuestion map[string][]*Option
	answers           map[string][]*Answer // keyed by userID + "\x00" + surveyID
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		users:             map[string]*User{},
		usersByEmail:      map[string]*User{},
		surveys:           map[string]*Survey{},
		questions:         map[string]*Question{},
		questionsBySurvey: map[string][]*Question{},
		options:           map[string]*Option{},
		optionsByQuestion: map[string][]*Option{},
		answers:           map[string][]*Answer{},
	}
}

func answerKey(userID, surveyID string) string { return userID + "\x00" + surveyID }

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[email]
}

func (s *memoryStore) GetUser(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}

func (s *memoryStore) AddSurvey(sv *Survey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[sv.SID]; !ok {
		s.surveyOrder = append(s.surveyOrder, sv.SID)
	}
	s.surveys[sv.SID] = sv
}

func (s *memoryStore) GetSurvey(id string) *Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surveys[id]
}

// DeleteSurvey removes the survey and cascades to its questions, options
// and every user's answers for it.
func (s *memoryStore) DeleteSurvey(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[id]; !ok {
		return false
	}
	for _, q := range s.questionsBySurvey[id] {
		for _, o := range s.optionsByQuestion[q.QID] {
			delete(s.options, o.OID)
		}
		delete(s.optionsByQuestion, q.QID)
		delete(s.questions, q.QID)
	}
	delete(s.questionsBySurvey, id)
	delete(s.surveys, id)
	for i, sid := range s.surveyOrder {
		if sid == id {
			s.surveyOrder = append(s.surveyOrder[:i], s.surveyOrder[i+1:]...)
			break
		}
	}
	for key := range s.answers {
		if len(key) > len(id) && key[len(key)-len(id):] == id && key[len(key)-len(id)-1] == '\x00' {
			delete(s.answers, key)
		}
	}
	return true
}

func (s *memoryStore) ListSurveysByUser(uid string) []*Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Survey{}
	for _, sid := range s.surveyOrder {
		if sv := s.surveys[sid]; sv != nil && sv.UserID == uid {
			out = append(out, sv)
		}
	}
	return out
}

func (s *memoryStore) ListPublicSurveys() []*Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Survey{}
	for _, sid := range s.surveyOrder {
		if sv := s.surveys[sid]; sv != nil && sv.Public {
			out = append(out, sv)
		}
	}
	return out
}

func (s *memoryStore) AddQuestion(q *Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.QID] = q
	s.questionsBySurvey[q.SurveyID] = append(s.questionsBySurvey[q.SurveyID], q)
}

func (s *memoryStore) GetQuestion(id string) *Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions[id]
}

func (s *memoryStore) ListQuestions(surveyID string) []*Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Question(nil), s.questionsBySurvey[surveyID]...)
}

func (s *memoryStore) AddOption(o *Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[o.OID] = o
	s.optionsByQuestion[o.QuestionID] = append(s.optionsByQuestion[o.QuestionID], o)
}

func (s *memoryStore) GetOption(id string) *Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options[id]
}

func (s *memoryStore) ListOptions(questionID string) []*Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Option(nil), s.optionsByQuestion[questionID]...)
}

// ReplaceAnswers swaps the user's whole answer set for the survey.
func (s *memoryStore) ReplaceAnswers(userID, surveyID string, answers []*Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answerKey(userID, surveyID)] = append([]*Answer(nil), answers...)
}

func (s *memoryStore) ListAnswers(userID, surveyID string) []*Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Answer(nil), s.answers[answerKey(userID, surveyID)]...)
}

func (s *memoryStore) ListSurveyAnswers(surveyID string) []*Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Answer{}
	for _, set := range s.answers {
		for _, a := range set {
			if a.SurveyID == surveyID {
				out = append(out, a)
			}
		}
	}
	return out
}
