package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mindlab-app/mindlab/internal/middleware"
	"github.com/mindlab-app/mindlab/internal/services"
)

// Router serves the GraphQL survey endpoint plus the REST auth and
// export routes.
type Router struct {
	store    Store
	auth     *services.AuthService
	answers  *services.AnswerService
	now      func() time.Time
	idGen    func(prefix string) string
	validate *validator.Validate
}

func NewRouter(store Store) *Router {
	return &Router{
		store:    store,
		auth:     services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		answers:  services.NewAnswerService(newAnswerStoreAdapter(store)),
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    func(prefix string) string { return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
		validate: validator.New(),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/graphql", rt.handleGraphQL)            // POST
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
	mux.HandleFunc("/api/export", rt.handleExport)          // GET
	mux.HandleFunc("/health", rt.handleHealth)              // GET
}

// operations the GraphQL handler dispatches on. The handler matches the
// operation field name inside the fixed query documents the clients send
// rather than parsing GraphQL.
var operations = []string{
	"createSurvey",
	"deleteSurvey",
	"getMySurvey",
	"getPublicSurvey",
	"getSurveyData",
	"getAnswers",
	"saveAnswers",
	"createQuestion",
	"createOption",
}

func operationName(query string) string {
	for _, op := range operations {
		if strings.Contains(query, op) {
			return op
		}
	}
	return ""
}

type gqlRequest struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeGQLErrors(w http.ResponseWriter, msg string) {
	writeJSON(w, map[string]any{"errors": []map[string]any{{"message": msg}}})
}

// fail is a business rejection: HTTP 200, success=false inside the data
// envelope. Transport-level problems use writeGQLErrors instead.
func fail(msg string) map[string]any {
	return map[string]any{"success": false, "message": msg}
}

func ok(msg string) map[string]any {
	return map[string]any{"success": true, "message": msg}
}

func (rt *Router) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGQLErrors(w, "invalid request body")
		return
	}
	op := operationName(req.Query)
	if op == "" {
		writeGQLErrors(w, "unknown operation")
		return
	}

	var uid string
	if c, authed := middleware.ClaimsFromContext(r.Context()); authed {
		uid = c.UID
	}

	var payload any
	switch op {
	case "createSurvey":
		payload = rt.createSurvey(uid)
	case "deleteSurvey":
		payload = rt.deleteSurvey(uid, req.Variables)
	case "getMySurvey":
		payload = rt.getMySurvey(uid)
	case "getPublicSurvey":
		payload = rt.getPublicSurvey()
	case "getSurveyData":
		payload = rt.getSurveyData(req.Variables)
	case "getAnswers":
		payload = rt.getAnswers(uid, req.Variables)
	case "saveAnswers":
		payload = rt.saveAnswers(uid, req.Variables)
	case "createQuestion":
		payload = rt.createQuestion(uid, req.Variables)
	case "createOption":
		payload = rt.createOption(uid, req.Variables)
	}
	writeJSON(w, map[string]any{"data": map[string]any{op: payload}})
}

type surveyIDVars struct {
	SurveyID string `json:"surveyId" validate:"required"`
}

func (rt *Router) surveyIDFrom(raw json.RawMessage) (string, bool) {
	var vars surveyIDVars
	if err := json.Unmarshal(raw, &vars); err != nil {
		return "", false
	}
	if err := rt.validate.Struct(&vars); err != nil {
		return "", false
	}
	return vars.SurveyID, true
}

func (rt *Router) createSurvey(uid string) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	sv := &Survey{
		SID:       rt.idGen("s"),
		UserID:    uid,
		Title:     "Untitled survey",
		Public:    true,
		CreatedAt: rt.now(),
	}
	rt.store.AddSurvey(sv)
	out := ok("survey created")
	out["s_id"] = sv.SID
	return out
}

func (rt *Router) deleteSurvey(uid string, raw json.RawMessage) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	surveyID, valid := rt.surveyIDFrom(raw)
	if !valid {
		return fail("surveyId required")
	}
	sv := rt.store.GetSurvey(surveyID)
	if sv == nil {
		return fail("survey not found")
	}
	if sv.UserID != uid {
		return fail("not the survey owner")
	}
	rt.store.DeleteSurvey(surveyID)
	return ok("survey deleted")
}

func (rt *Router) getMySurvey(uid string) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	out := ok("ok")
	out["surveys"] = rt.store.ListSurveysByUser(uid)
	return out
}

func (rt *Router) getPublicSurvey() map[string]any {
	out := ok("ok")
	out["surveys"] = rt.store.ListPublicSurveys()
	return out
}

func (rt *Router) getSurveyData(raw json.RawMessage) map[string]any {
	surveyID, valid := rt.surveyIDFrom(raw)
	if !valid {
		return fail("surveyId required")
	}
	sv := rt.store.GetSurvey(surveyID)
	if sv == nil {
		return fail("survey not found")
	}

	type questionPayload struct {
		QID       string    `json:"q_id"`
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"createdAt"`
		Options   []*Option `json:"options"`
	}
	questions := rt.store.ListQuestions(surveyID)
	qs := make([]questionPayload, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, questionPayload{
			QID:       q.QID,
			Text:      q.Text,
			CreatedAt: q.CreatedAt,
			Options:   rt.store.ListOptions(q.QID),
		})
	}
	out := ok("ok")
	out["survey"] = map[string]any{
		"title":       sv.Title,
		"description": sv.Description,
		"questions":   qs,
	}
	return out
}

func (rt *Router) getAnswers(uid string, raw json.RawMessage) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	surveyID, valid := rt.surveyIDFrom(raw)
	if !valid {
		return fail("surveyId required")
	}
	out := ok("ok")
	out["answers"] = rt.store.ListAnswers(uid, surveyID)
	return out
}

func (rt *Router) saveAnswers(uid string, raw json.RawMessage) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	var vars struct {
		SurveyID string `json:"surveyId" validate:"required"`
		Answers  []struct {
			QuestionID string  `json:"questionId" validate:"required"`
			OptionID   *string `json:"optionId"`
			// Score is accepted but ignored; the stored score always
			// comes from the referenced option.
			Score *int `json:"score"`
		} `json:"answers" validate:"dive"`
	}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return fail("invalid answers payload")
	}
	if err := rt.validate.Struct(&vars); err != nil {
		return fail("invalid answers payload")
	}

	inputs := make([]services.AnswerInput, 0, len(vars.Answers))
	for _, a := range vars.Answers {
		inputs = append(inputs, services.AnswerInput{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}
	n, err := rt.answers.Save(uid, vars.SurveyID, inputs)
	if err != nil {
		return fail(err.Error())
	}
	return ok(fmt.Sprintf("saved %d answers", n))
}

func (rt *Router) createQuestion(uid string, raw json.RawMessage) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	var vars struct {
		SurveyID string `json:"surveyId" validate:"required"`
		Text     string `json:"text" validate:"required"`
	}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return fail("surveyId and text required")
	}
	if err := rt.validate.Struct(&vars); err != nil {
		return fail("surveyId and text required")
	}
	sv := rt.store.GetSurvey(vars.SurveyID)
	if sv == nil {
		return fail("survey not found")
	}
	if sv.UserID != uid {
		return fail("not the survey owner")
	}
	q := &Question{QID: rt.idGen("q"), SurveyID: sv.SID, Text: vars.Text, CreatedAt: rt.now()}
	rt.store.AddQuestion(q)
	out := ok("question created")
	out["q_id"] = q.QID
	return out
}

func (rt *Router) createOption(uid string, raw json.RawMessage) map[string]any {
	if uid == "" {
		return fail("login required")
	}
	var vars struct {
		QuestionID string `json:"questionId" validate:"required"`
		Text       string `json:"text" validate:"required"`
		Score      int    `json:"score"`
	}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return fail("questionId and text required")
	}
	if err := rt.validate.Struct(&vars); err != nil {
		return fail("questionId and text required")
	}
	q := rt.store.GetQuestion(vars.QuestionID)
	if q == nil {
		return fail("question not found")
	}
	sv := rt.store.GetSurvey(q.SurveyID)
	if sv == nil || sv.UserID != uid {
		return fail("not the survey owner")
	}
	o := &Option{OID: rt.idGen("o"), QuestionID: q.QID, Text: vars.Text, Score: vars.Score, CreatedAt: rt.now()}
	rt.store.AddOption(o)
	out := ok("option created")
	out["o_id"] = o.OID
	return out
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Photo    string `json:"photo"`
}

func kindStatus(err error) int {
	kind, known := services.KindOf(err)
	if !known {
		return http.StatusInternalServerError
	}
	switch kind {
	case services.KindInvalid:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := rt.validate.Struct(&creds); err != nil {
		http.Error(w, "valid email and a password of at least 6 characters required", http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(creds.Email, creds.Password, creds.Photo)
	if err != nil {
		http.Error(w, err.Error(), kindStatus(err))
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "user_id": res.UserID})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(creds.Email, creds.Password)
	if err != nil {
		http.Error(w, err.Error(), kindStatus(err))
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// GET /api/export?surveyId=... — long-format CSV of every answer saved
// for a survey. Owner only.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	surveyID := r.URL.Query().Get("surveyId")
	if surveyID == "" {
		http.Error(w, "surveyId required", http.StatusBadRequest)
		return
	}
	sv := rt.store.GetSurvey(surveyID)
	if sv == nil {
		http.Error(w, "survey not found", http.StatusNotFound)
		return
	}
	if sv.UserID != claims.UID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	answers := rt.store.ListSurveyAnswers(surveyID)
	sort.Slice(answers, func(i, j int) bool {
		if answers[i].UserID != answers[j].UserID {
			return answers[i].UserID < answers[j].UserID
		}
		return answers[i].QuestionID < answers[j].QuestionID
	})
	rows := make([]services.AnswerRow, 0, len(answers))
	for _, a := range answers {
		row := services.AnswerRow{
			UserID:     a.UserID,
			QuestionID: a.QuestionID,
			SavedAt:    a.SavedAt.UTC().Format(time.RFC3339),
		}
		if q := rt.store.GetQuestion(a.QuestionID); q != nil {
			row.QuestionText = q.Text
		}
		if a.OptionID != nil {
			row.OptionID = *a.OptionID
		}
		if a.Score != nil {
			row.Score = strconv.Itoa(*a.Score)
		}
		rows = append(rows, row)
	}
	out, err := services.ExportAnswersCSV(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=answers-"+surveyID+".csv")
	_, _ = w.Write(out)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"ok": true})
}
