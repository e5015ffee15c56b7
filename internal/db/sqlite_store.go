package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mindlab-app/mindlab/internal/api"
)

// SQLiteStore persists the survey catalog, question trees and answers.
// The api.Store interface has no error returns; query failures are
// logged and surface as missing data, matching the in-memory store's
// shape.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs the
// schema migrations.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func (s *SQLiteStore) AddUser(u *api.User) {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, photo, pass_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Photo, u.PassHash, u.CreatedAt)
	s.logErr("add user", err)
}

func (s *SQLiteStore) scanUser(row *sql.Row) *api.User {
	var u api.User
	err := row.Scan(&u.ID, &u.Email, &u.Photo, &u.PassHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("scan user", err)
		return nil
	}
	return &u
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, photo, pass_hash, created_at FROM users WHERE email = ?`, email))
}

func (s *SQLiteStore) GetUser(id string) *api.User {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, photo, pass_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) AddSurvey(sv *api.Survey) {
	_, err := s.db.Exec(
		`INSERT INTO surveys (s_id, user_id, title, description, public, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sv.SID, sv.UserID, sv.Title, sv.Description, sv.Public, sv.CreatedAt)
	s.logErr("add survey", err)
}

func (s *SQLiteStore) GetSurvey(id string) *api.Survey {
	var sv api.Survey
	err := s.db.QueryRow(
		`SELECT s_id, user_id, title, description, public, created_at FROM surveys WHERE s_id = ?`, id).
		Scan(&sv.SID, &sv.UserID, &sv.Title, &sv.Description, &sv.Public, &sv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get survey", err)
		return nil
	}
	return &sv
}

// DeleteSurvey relies on ON DELETE CASCADE for questions, options and
// answers.
func (s *SQLiteStore) DeleteSurvey(id string) bool {
	res, err := s.db.Exec(`DELETE FROM surveys WHERE s_id = ?`, id)
	if err != nil {
		s.logErr("delete survey", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logErr("delete survey", err)
		return false
	}
	return n > 0
}

func (s *SQLiteStore) listSurveys(query string, args ...any) []*api.Survey {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logErr("list surveys", err)
		return []*api.Survey{}
	}
	defer rows.Close()
	out := []*api.Survey{}
	for rows.Next() {
		var sv api.Survey
		if err := rows.Scan(&sv.SID, &sv.UserID, &sv.Title, &sv.Description, &sv.Public, &sv.CreatedAt); err != nil {
			s.logErr("scan survey", err)
			continue
		}
		out = append(out, &sv)
	}
	s.logErr("list surveys", rows.Err())
	return out
}

func (s *SQLiteStore) ListSurveysByUser(uid string) []*api.Survey {
	return s.listSurveys(
		`SELECT s_id, user_id, title, description, public, created_at FROM surveys WHERE user_id = ? ORDER BY rowid`, uid)
}

func (s *SQLiteStore) ListPublicSurveys() []*api.Survey {
	return s.listSurveys(
		`SELECT s_id, user_id, title, description, public, created_at FROM surveys WHERE public = 1 ORDER BY rowid`)
}

func (s *SQLiteStore) AddQuestion(q *api.Question) {
	_, err := s.db.Exec(
		`INSERT INTO questions (q_id, s_id, text, created_at) VALUES (?, ?, ?, ?)`,
		q.QID, q.SurveyID, q.Text, q.CreatedAt)
	s.logErr("add question", err)
}

func (s *SQLiteStore) GetQuestion(id string) *api.Question {
	var q api.Question
	err := s.db.QueryRow(
		`SELECT q_id, s_id, text, created_at FROM questions WHERE q_id = ?`, id).
		Scan(&q.QID, &q.SurveyID, &q.Text, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get question", err)
		return nil
	}
	return &q
}

func (s *SQLiteStore) ListQuestions(surveyID string) []*api.Question {
	rows, err := s.db.Query(
		`SELECT q_id, s_id, text, created_at FROM questions WHERE s_id = ? ORDER BY rowid`, surveyID)
	if err != nil {
		s.logErr("list questions", err)
		return []*api.Question{}
	}
	defer rows.Close()
	out := []*api.Question{}
	for rows.Next() {
		var q api.Question
		if err := rows.Scan(&q.QID, &q.SurveyID, &q.Text, &q.CreatedAt); err != nil {
			s.logErr("scan question", err)
			continue
		}
		out = append(out, &q)
	}
	s.logErr("list questions", rows.Err())
	return out
}

func (s *SQLiteStore) AddOption(o *api.Option) {
	_, err := s.db.Exec(
		`INSERT INTO options (o_id, q_id, text, score, created_at) VALUES (?, ?, ?, ?, ?)`,
		o.OID, o.QuestionID, o.Text, o.Score, o.CreatedAt)
	s.logErr("add option", err)
}

func (s *SQLiteStore) GetOption(id string) *api.Option {
	var o api.Option
	err := s.db.QueryRow(
		`SELECT o_id, q_id, text, score, created_at FROM options WHERE o_id = ?`, id).
		Scan(&o.OID, &o.QuestionID, &o.Text, &o.Score, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get option", err)
		return nil
	}
	return &o
}

func (s *SQLiteStore) ListOptions(questionID string) []*api.Option {
	rows, err := s.db.Query(
		`SELECT o_id, q_id, text, score, created_at FROM options WHERE q_id = ? ORDER BY rowid`, questionID)
	if err != nil {
		s.logErr("list options", err)
		return []*api.Option{}
	}
	defer rows.Close()
	out := []*api.Option{}
	for rows.Next() {
		var o api.Option
		if err := rows.Scan(&o.OID, &o.QuestionID, &o.Text, &o.Score, &o.CreatedAt); err != nil {
			s.logErr("scan option", err)
			continue
		}
		out = append(out, &o)
	}
	s.logErr("list options", rows.Err())
	return out
}

// ReplaceAnswers swaps the user's whole answer set for the survey in one
// transaction.
func (s *SQLiteStore) ReplaceAnswers(userID, surveyID string, answers []*api.Answer) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("replace answers", err)
		return
	}
	if _, err := tx.Exec(`DELETE FROM answers WHERE user_id = ? AND s_id = ?`, userID, surveyID); err != nil {
		s.logErr("replace answers", err)
		_ = tx.Rollback()
		return
	}
	for _, a := range answers {
		if _, err := tx.Exec(
			`INSERT INTO answers (user_id, s_id, q_id, o_id, score, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
			a.UserID, a.SurveyID, a.QuestionID, toNullString(a.OptionID), toNullInt(a.Score), a.SavedAt); err != nil {
			s.logErr("replace answers", err)
			_ = tx.Rollback()
			return
		}
	}
	s.logErr("replace answers", tx.Commit())
}

func (s *SQLiteStore) listAnswers(query string, args ...any) []*api.Answer {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logErr("list answers", err)
		return []*api.Answer{}
	}
	defer rows.Close()
	out := []*api.Answer{}
	for rows.Next() {
		var (
			a     api.Answer
			oid   sql.NullString
			score sql.NullInt64
		)
		if err := rows.Scan(&a.UserID, &a.SurveyID, &a.QuestionID, &oid, &score, &a.SavedAt); err != nil {
			s.logErr("scan answer", err)
			continue
		}
		a.OptionID = fromNullString(oid)
		a.Score = fromNullInt(score)
		out = append(out, &a)
	}
	s.logErr("list answers", rows.Err())
	return out
}

func (s *SQLiteStore) ListAnswers(userID, surveyID string) []*api.Answer {
	return s.listAnswers(
		`SELECT user_id, s_id, q_id, o_id, score, saved_at FROM answers WHERE user_id = ? AND s_id = ? ORDER BY rowid`,
		userID, surveyID)
}

func (s *SQLiteStore) ListSurveyAnswers(surveyID string) []*api.Answer {
	return s.listAnswers(
		`SELECT user_id, s_id, q_id, o_id, score, saved_at FROM answers WHERE s_id = ? ORDER BY rowid`, surveyID)
}

var _ api.Store = (*SQLiteStore)(nil)
