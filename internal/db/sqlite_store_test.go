package db

import (
	"testing"
	"time"

	"github.com/mindlab-app/mindlab/internal/api"
)

func newTestStore(t *testing.T) api.Store {
	t.Helper()
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	store, err := NewStore(conn)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func seedSurvey(t *testing.T, store api.Store) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	store.AddUser(&api.User{ID: "u1", Email: "u1@example.com", PassHash: []byte("x"), CreatedAt: now})
	store.AddUser(&api.User{ID: "u2", Email: "u2@example.com", PassHash: []byte("x"), CreatedAt: now})
	store.AddSurvey(&api.Survey{SID: "S1", UserID: "u1", Title: "First", Public: true, CreatedAt: now})
	store.AddSurvey(&api.Survey{SID: "S2", UserID: "u2", Title: "Second", Public: false, CreatedAt: now})
	store.AddQuestion(&api.Question{QID: "Q1", SurveyID: "S1", Text: "one", CreatedAt: now.Add(time.Second)})
	store.AddQuestion(&api.Question{QID: "Q2", SurveyID: "S1", Text: "two", CreatedAt: now.Add(2 * time.Second)})
	store.AddOption(&api.Option{OID: "O1", QuestionID: "Q1", Text: "a", Score: 1, CreatedAt: now.Add(3 * time.Second)})
	store.AddOption(&api.Option{OID: "O2", QuestionID: "Q1", Text: "b", Score: 2, CreatedAt: now.Add(4 * time.Second)})
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seedSurvey(t, store)

	if u := store.FindUserByEmail("u1@example.com"); u == nil || u.ID != "u1" {
		t.Fatalf("user = %+v", u)
	}
	if sv := store.GetSurvey("S1"); sv == nil || sv.Title != "First" || !sv.Public {
		t.Fatalf("survey = %+v", sv)
	}
	if my := store.ListSurveysByUser("u1"); len(my) != 1 || my[0].SID != "S1" {
		t.Fatalf("my surveys = %+v", my)
	}
	if public := store.ListPublicSurveys(); len(public) != 1 || public[0].SID != "S1" {
		t.Fatalf("public surveys = %+v", public)
	}
	if qs := store.ListQuestions("S1"); len(qs) != 2 || qs[0].QID != "Q1" || qs[1].QID != "Q2" {
		t.Fatalf("questions = %+v", qs)
	}
	if opts := store.ListOptions("Q1"); len(opts) != 2 || opts[0].OID != "O1" {
		t.Fatalf("options = %+v", opts)
	}
	if o := store.GetOption("O2"); o == nil || o.Score != 2 {
		t.Fatalf("option = %+v", o)
	}
}

func TestSQLiteReplaceAnswers(t *testing.T) {
	store := newTestStore(t)
	seedSurvey(t, store)

	oid := "O1"
	score := 1
	now := time.Now().UTC().Truncate(time.Second)
	store.ReplaceAnswers("u2", "S1", []*api.Answer{
		{UserID: "u2", SurveyID: "S1", QuestionID: "Q1", OptionID: &oid, Score: &score, SavedAt: now},
		{UserID: "u2", SurveyID: "S1", QuestionID: "Q2", SavedAt: now},
	})

	got := store.ListAnswers("u2", "S1")
	if len(got) != 2 {
		t.Fatalf("answers = %+v", got)
	}
	if got[0].OptionID == nil || *got[0].OptionID != "O1" || got[0].Score == nil || *got[0].Score != 1 {
		t.Fatalf("first answer = %+v", got[0])
	}
	if got[1].OptionID != nil || got[1].Score != nil {
		t.Fatalf("second answer = %+v, want explicit no-choice", got[1])
	}

	// A new submission replaces the whole set.
	store.ReplaceAnswers("u2", "S1", []*api.Answer{
		{UserID: "u2", SurveyID: "S1", QuestionID: "Q1", SavedAt: now},
	})
	if got := store.ListAnswers("u2", "S1"); len(got) != 1 || got[0].OptionID != nil {
		t.Fatalf("answers after replace = %+v", got)
	}
	if all := store.ListSurveyAnswers("S1"); len(all) != 1 {
		t.Fatalf("survey answers = %+v", all)
	}
}

func TestSQLiteDeleteSurveyCascades(t *testing.T) {
	store := newTestStore(t)
	seedSurvey(t, store)
	now := time.Now().UTC()
	store.ReplaceAnswers("u2", "S1", []*api.Answer{
		{UserID: "u2", SurveyID: "S1", QuestionID: "Q1", SavedAt: now},
	})

	if !store.DeleteSurvey("S1") {
		t.Fatal("delete reported failure")
	}
	if store.GetSurvey("S1") != nil {
		t.Fatal("survey still present")
	}
	if store.GetQuestion("Q1") != nil || store.GetOption("O1") != nil {
		t.Fatal("children not cascaded")
	}
	if n := len(store.ListAnswers("u2", "S1")); n != 0 {
		t.Fatalf("answers not cascaded, %d left", n)
	}
	if store.DeleteSurvey("S1") {
		t.Fatal("second delete reported success")
	}
}
