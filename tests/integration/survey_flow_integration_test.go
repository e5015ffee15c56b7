//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mindlab-app/mindlab/internal/catalog"
	"github.com/mindlab-app/mindlab/internal/engine"
	"github.com/mindlab-app/mindlab/internal/graphql"
	"github.com/mindlab-app/mindlab/internal/session"
)

func baseURL() string {
	if v := os.Getenv("MINDLAB_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:8080"
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s status %d: %s", url, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s response: %v", url, err)
		}
	}
}

const createQuestionMutation = `
mutation CreateQuestion($surveyId: String!, $text: String!) {
  createQuestion(surveyId: $surveyId, text: $text) {
    success
    message
    q_id
  }
}`

const createOptionMutation = `
mutation CreateOption($questionId: String!, $text: String!, $score: Int!) {
  createOption(questionId: $questionId, text: $text, score: $score) {
    success
    message
    o_id
  }
}`

// Live end-to-end journey against a running server: register, author a
// survey, answer it, submit, and verify the authoritative reload.
func TestSurveyJourneyIntegration(t *testing.T) {
	httpc := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()
	ctx := context.Background()

	email := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doPost(t, httpc, base+"/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "Secret123!",
	}, &registerResp)
	if registerResp.Token == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, httpc, base+"/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "Secret123!",
	}, &loginResp)
	if loginResp.Token == "" {
		t.Fatal("login did not return token")
	}

	token := loginResp.Token
	sess := session.FromToken(token)
	if sess.Email != email {
		t.Fatalf("session email = %q, want %q", sess.Email, email)
	}
	client := graphql.NewClient(base+"/graphql", token)

	cat := catalog.New(client, sess)
	if err := cat.CreateSurvey(ctx); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}
	my := cat.MySurveys()
	if len(my) == 0 {
		t.Fatal("created survey missing from my list")
	}
	surveyID := my[len(my)-1].SID

	resp, err := client.Do(ctx, createQuestionMutation, map[string]any{"surveyId": surveyID, "text": "How satisfied are you?"})
	if err != nil {
		t.Fatalf("createQuestion: %v", err)
	}
	var qOut struct {
		graphql.Result
		QID string `json:"q_id"`
	}
	if err := resp.Decode("createQuestion", &qOut); err != nil || !qOut.Success {
		t.Fatalf("createQuestion decode=%v result=%+v", err, qOut)
	}

	var optionID string
	for i, text := range []string{"Dissatisfied", "Neutral", "Satisfied"} {
		resp, err := client.Do(ctx, createOptionMutation, map[string]any{"questionId": qOut.QID, "text": text, "score": i + 1})
		if err != nil {
			t.Fatalf("createOption: %v", err)
		}
		var oOut struct {
			graphql.Result
			OID string `json:"o_id"`
		}
		if err := resp.Decode("createOption", &oOut); err != nil || !oOut.Success {
			t.Fatalf("createOption decode=%v result=%+v", err, oOut)
		}
		optionID = oOut.OID
	}

	eng := engine.New(client, sess)
	if err := eng.LoadSurvey(ctx, surveyID); err != nil {
		t.Fatalf("LoadSurvey: %v", err)
	}
	if err := eng.SelectOption(qOut.QID, optionID); err != nil {
		t.Fatalf("SelectOption: %v", err)
	}
	if err := eng.SubmitAnswers(ctx); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if eng.Revision() != 1 {
		t.Fatalf("revision = %d, want 1", eng.Revision())
	}
	questions := eng.Questions()
	if len(questions) != 1 || questions[0].Selected == nil || questions[0].Selected.OID != optionID {
		t.Fatalf("reload did not carry the submitted selection: %+v", questions)
	}

	if err := cat.DeleteSurvey(ctx, surveyID); err != nil {
		t.Fatalf("DeleteSurvey: %v", err)
	}
	for _, sv := range cat.MySurveys() {
		if sv.SID == surveyID {
			t.Fatal("deleted survey still listed")
		}
	}
}
