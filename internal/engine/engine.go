// Package engine hosts the survey-response synchronization workflow: it
// loads a survey's question tree in a deterministic order, merges the
// user's previously saved answers onto it, tracks in-session selections,
// and submits the full answer set as one batch, re-fetching authoritative
// state after every successful write.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mindlab-app/mindlab/internal/graphql"
	"github.com/mindlab-app/mindlab/internal/models"
	"github.com/mindlab-app/mindlab/internal/session"
)

// Transport is the slice of the GraphQL client the engine depends on.
type Transport interface {
	Do(ctx context.Context, query string, variables map[string]any) (*graphql.Response, error)
}

var (
	ErrUnauthenticated  = errors.New("engine: session is not authenticated")
	ErrEmptySurveyID    = errors.New("engine: survey id is empty")
	ErrNoSurveyLoaded   = errors.New("engine: no survey loaded")
	ErrStaleLoad        = errors.New("engine: load superseded by a newer load")
	ErrQuestionNotFound = errors.New("engine: question not found")
	ErrOptionNotFound   = errors.New("engine: option not found")
)

const getSurveyDataMutation = `
mutation GetSurveyData($surveyId: String!) {
  getSurveyData(surveyId: $surveyId) {
    success
    message
    survey {
      title
      description
      questions {
        q_id
        text
        createdAt
        options {
          o_id
          text
          score
          createdAt
        }
      }
    }
  }
}`

const getAnswersQuery = `
query GetAnswers($surveyId: String!) {
  getAnswers(surveyId: $surveyId) {
    success
    message
    answers {
      questionId
      optionId
      score
    }
  }
}`

const saveAnswersMutation = `
mutation SaveAnswers($surveyId: String!, $answers: [AnswerInput!]!) {
  saveAnswers(surveyId: $surveyId, answers: $answers) {
    success
    message
  }
}`

// Engine owns the in-memory question list for one survey-viewing session.
// Its methods are not safe for concurrent use by multiple goroutines;
// there is one logical writer per session. The load generation counter
// only guards sequential re-entry against abandoned loads applying late.
type Engine struct {
	transport Transport
	session   session.Session

	surveyID    string
	title       string
	description string
	questions   []*models.Question

	revision atomic.Int64
	loadGen  atomic.Int64
}

// New constructs an engine bound to the given transport and session.
func New(t Transport, sess session.Session) *Engine {
	return &Engine{transport: t, session: sess}
}

// LoadSurvey fetches the survey structure, imposes ascending
// creation-timestamp order on questions and options, installs it, then
// fetches and merges the caller's saved answers. A structure failure
// leaves prior state fully unchanged; an answers failure leaves the
// freshly installed structure in place with no selections.
func (e *Engine) LoadSurvey(ctx context.Context, surveyID string) error {
	if surveyID == "" {
		return ErrEmptySurveyID
	}
	if !e.session.Authenticated() {
		return ErrUnauthenticated
	}
	gen := e.loadGen.Add(1)

	resp, err := e.transport.Do(ctx, getSurveyDataMutation, map[string]any{"surveyId": surveyID})
	if err != nil {
		return fmt.Errorf("load survey structure: %w", err)
	}
	var structure struct {
		graphql.Result
		Survey models.SurveyData `json:"survey"`
	}
	if err := resp.Decode("getSurveyData", &structure); err != nil {
		return fmt.Errorf("load survey structure: %w", err)
	}
	if !structure.Success {
		return &graphql.ServerError{Op: "getSurveyData", Message: structure.Message}
	}
	if e.loadGen.Load() != gen {
		return ErrStaleLoad
	}

	questions := make([]*models.Question, len(structure.Survey.Questions))
	for i := range structure.Survey.Questions {
		q := structure.Survey.Questions[i]
		q.Selected = nil
		questions[i] = &q
	}
	sortStructure(questions)

	e.surveyID = surveyID
	e.title = structure.Survey.Title
	e.description = structure.Survey.Description
	e.questions = questions

	answers, err := e.fetchAnswers(ctx, surveyID)
	if err != nil {
		return err
	}
	if e.loadGen.Load() != gen {
		return ErrStaleLoad
	}
	mergeAnswers(e.questions, answers)
	return nil
}

func (e *Engine) fetchAnswers(ctx context.Context, surveyID string) ([]models.Answer, error) {
	resp, err := e.transport.Do(ctx, getAnswersQuery, map[string]any{"surveyId": surveyID})
	if err != nil {
		return nil, fmt.Errorf("load saved answers: %w", err)
	}
	var payload struct {
		graphql.Result
		Answers []models.Answer `json:"answers"`
	}
	if err := resp.Decode("getAnswers", &payload); err != nil {
		return nil, fmt.Errorf("load saved answers: %w", err)
	}
	if !payload.Success {
		return nil, &graphql.ServerError{Op: "getAnswers", Message: payload.Message}
	}
	return payload.Answers, nil
}

// SelectOption sets the selection for one question. Pure in-memory state
// transition: no network effect, idempotent for a repeated pair, other
// questions untouched.
func (e *Engine) SelectOption(questionID, optionID string) error {
	for _, q := range e.questions {
		if q.QID != questionID {
			continue
		}
		for i := range q.Options {
			if q.Options[i].OID == optionID {
				q.Selected = &q.Options[i]
				return nil
			}
		}
		return ErrOptionNotFound
	}
	return ErrQuestionNotFound
}

// SubmitAnswers sends exactly one answer record per loaded question —
// optionId and score are null for unselected questions — as a single
// batch mutation. On success it bumps the revision and reloads so that
// state reflects what the server actually persisted.
func (e *Engine) SubmitAnswers(ctx context.Context) error {
	if e.surveyID == "" {
		return ErrNoSurveyLoaded
	}
	answers := make([]map[string]any, 0, len(e.questions))
	for _, q := range e.questions {
		var optionID, score any
		if q.Selected != nil {
			optionID = q.Selected.OID
			score = q.Selected.Score
		}
		answers = append(answers, map[string]any{
			"questionId": q.QID,
			"optionId":   optionID,
			"score":      score,
		})
	}

	resp, err := e.transport.Do(ctx, saveAnswersMutation, map[string]any{
		"surveyId": e.surveyID,
		"answers":  answers,
	})
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	var result graphql.Result
	if err := resp.Decode("saveAnswers", &result); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	if !result.Success {
		return &graphql.ServerError{Op: "saveAnswers", Message: result.Message}
	}

	e.revision.Add(1)
	// The server's round-trip is authoritative after a write.
	return e.LoadSurvey(ctx, e.surveyID)
}

// Title returns the loaded survey title.
func (e *Engine) Title() string { return e.title }

// Description returns the loaded survey description.
func (e *Engine) Description() string { return e.description }

// Revision returns the monotonically increasing count of successful
// submissions; each bump corresponds to one authoritative reload.
func (e *Engine) Revision() int64 { return e.revision.Load() }

// Questions returns the loaded question list in render order. The slice
// is a copy; the question values are shared with the engine.
func (e *Engine) Questions() []*models.Question {
	out := make([]*models.Question, len(e.questions))
	copy(out, e.questions)
	return out
}
