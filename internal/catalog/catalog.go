// Package catalog manages the current user's survey lists: the surveys
// they own and the public surveys they can participate in. Mutations
// never splice results into local state; a successful create or delete
// bumps the revision and re-fetches both lists from the server.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mindlab-app/mindlab/internal/graphql"
	"github.com/mindlab-app/mindlab/internal/models"
	"github.com/mindlab-app/mindlab/internal/session"
)

// Transport is the slice of the GraphQL client the catalog depends on.
type Transport interface {
	Do(ctx context.Context, query string, variables map[string]any) (*graphql.Response, error)
}

var ErrEmptySurveyID = errors.New("catalog: survey id is empty")

const createSurveyMutation = `
mutation CreateSurvey {
  createSurvey {
    success
    message
  }
}`

const deleteSurveyMutation = `
mutation DeleteSurvey($surveyId: String!) {
  deleteSurvey(surveyId: $surveyId) {
    success
    message
  }
}`

const getMySurveyQuery = `
query GetMySurvey {
  getMySurvey {
    success
    message
    surveys {
      s_id
      title
    }
  }
}`

const getPublicSurveyQuery = `
query GetPublicSurvey {
  getPublicSurvey {
    success
    message
    surveys {
      s_id
      title
    }
  }
}`

// Catalog holds the two survey lists for one session.
type Catalog struct {
	transport Transport
	session   session.Session

	mySurveys     []models.SurveySummary
	publicSurveys []models.SurveySummary
	revision      atomic.Int64
}

// New constructs a catalog bound to the given transport and session.
func New(t Transport, sess session.Session) *Catalog {
	return &Catalog{transport: t, session: sess}
}

// Refresh fetches both lists concurrently. Each list is replaced only on
// its own success, so one list's failure never disturbs the other. The
// "my surveys" fetch is skipped for unauthenticated sessions.
func (c *Catalog) Refresh(ctx context.Context) error {
	var (
		wg           sync.WaitGroup
		my, public   []models.SurveySummary
		myErr, pbErr error
	)

	if c.session.Authenticated() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			my, myErr = c.fetchList(ctx, "getMySurvey", getMySurveyQuery)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		public, pbErr = c.fetchList(ctx, "getPublicSurvey", getPublicSurveyQuery)
	}()
	wg.Wait()

	if c.session.Authenticated() && myErr == nil {
		c.mySurveys = my
	}
	if pbErr == nil {
		c.publicSurveys = public
	}
	return errors.Join(myErr, pbErr)
}

func (c *Catalog) fetchList(ctx context.Context, op, query string) ([]models.SurveySummary, error) {
	resp, err := c.transport.Do(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var payload struct {
		graphql.Result
		Surveys []models.SurveySummary `json:"surveys"`
	}
	if err := resp.Decode(op, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &graphql.ServerError{Op: op, Message: payload.Message}
	}
	return payload.Surveys, nil
}

// CreateSurvey asks the server for a new empty survey owned by the
// current user, then re-fetches both lists.
func (c *Catalog) CreateSurvey(ctx context.Context) error {
	return c.mutate(ctx, "createSurvey", createSurveyMutation, nil)
}

// DeleteSurvey deletes a survey by id, then re-fetches both lists. There
// is no confirmation step and no undo; a business rejection (for example
// deleting a survey the user does not own) leaves the lists unchanged.
func (c *Catalog) DeleteSurvey(ctx context.Context, surveyID string) error {
	if surveyID == "" {
		return ErrEmptySurveyID
	}
	return c.mutate(ctx, "deleteSurvey", deleteSurveyMutation, map[string]any{"surveyId": surveyID})
}

func (c *Catalog) mutate(ctx context.Context, op, query string, vars map[string]any) error {
	resp, err := c.transport.Do(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var result graphql.Result
	if err := resp.Decode(op, &result); err != nil {
		return err
	}
	if !result.Success {
		return &graphql.ServerError{Op: op, Message: result.Message}
	}
	c.revision.Add(1)
	return c.Refresh(ctx)
}

// MySurveys returns the surveys owned by the current user.
func (c *Catalog) MySurveys() []models.SurveySummary {
	return append([]models.SurveySummary(nil), c.mySurveys...)
}

// PublicSurveys returns the participatory survey list.
func (c *Catalog) PublicSurveys() []models.SurveySummary {
	return append([]models.SurveySummary(nil), c.publicSurveys...)
}

// Revision returns the count of successful mutations, each of which
// triggered a list re-fetch.
func (c *Catalog) Revision() int64 { return c.revision.Load() }
