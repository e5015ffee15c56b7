// Command mindlab is a terminal client for a mindlab survey server: it
// lists and manages the user's surveys and walks through answering one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mindlab-app/mindlab/internal/catalog"
	"github.com/mindlab-app/mindlab/internal/engine"
	"github.com/mindlab-app/mindlab/internal/graphql"
	"github.com/mindlab-app/mindlab/internal/models"
	"github.com/mindlab-app/mindlab/internal/session"
	"github.com/mindlab-app/mindlab/internal/utils"
)

const usage = `usage: mindlab <command> [arguments]

commands:
  list                     show my surveys and the public surveys
  create                   create a new empty survey
  delete <surveyId>        delete a survey I own
  answer <surveyId>        load a survey, apply selections, optionally submit
                           flags: -select qID=oID (repeatable), -submit

environment:
  MINDLAB_ENDPOINT         GraphQL endpoint (default http://localhost:8080/graphql)
  MINDLAB_SURVEY_ENDPOINT  endpoint for survey answering (defaults to MINDLAB_ENDPOINT)
  MINDLAB_ACCESS_TOKEN     access token from /api/auth/login
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	endpoint := utils.SafeEnv("MINDLAB_ENDPOINT", "http://localhost:8080/graphql")
	surveyEndpoint := utils.SafeEnv("MINDLAB_SURVEY_ENDPOINT", endpoint)
	token := os.Getenv("MINDLAB_ACCESS_TOKEN")
	sess := session.FromToken(token)
	client := graphql.NewClient(endpoint, token)
	surveyClient := graphql.NewClient(surveyEndpoint, token)
	ctx := context.Background()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "list":
		err = runList(ctx, client, sess)
	case "create":
		err = runCreate(ctx, client, sess)
	case "delete":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: mindlab delete <surveyId>")
			os.Exit(2)
		}
		err = runDelete(ctx, client, sess, os.Args[2])
	case "answer":
		err = runAnswer(ctx, surveyClient, sess, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, engine.ErrUnauthenticated) {
			fmt.Fprintln(os.Stderr, "login required: set MINDLAB_ACCESS_TOKEN (see /api/auth/login)")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runList(ctx context.Context, client *graphql.Client, sess session.Session) error {
	cat := catalog.New(client, sess)
	if err := cat.Refresh(ctx); err != nil {
		return err
	}
	if sess.Authenticated() {
		fmt.Printf("my surveys (%s):\n", sess.Email)
		printSummaries(cat.MySurveys())
	} else {
		fmt.Println("not logged in; showing public surveys only")
	}
	fmt.Println("public surveys:")
	printSummaries(cat.PublicSurveys())
	return nil
}

func printSummaries(list []models.SurveySummary) {
	if len(list) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, sv := range list {
		fmt.Printf("  %-16s %s\n", sv.SID, sv.Title)
	}
}

func runCreate(ctx context.Context, client *graphql.Client, sess session.Session) error {
	cat := catalog.New(client, sess)
	if err := cat.CreateSurvey(ctx); err != nil {
		return err
	}
	fmt.Println("survey created")
	printSummaries(cat.MySurveys())
	return nil
}

func runDelete(ctx context.Context, client *graphql.Client, sess session.Session, surveyID string) error {
	cat := catalog.New(client, sess)
	if err := cat.DeleteSurvey(ctx, surveyID); err != nil {
		return err
	}
	fmt.Printf("survey %s deleted\n", surveyID)
	return nil
}

// selections accumulates repeated -select qID=oID flags.
type selections map[string]string

func (s selections) String() string {
	pairs := make([]string, 0, len(s))
	for q, o := range s {
		pairs = append(pairs, q+"="+o)
	}
	return strings.Join(pairs, ",")
}

func (s selections) Set(v string) error {
	q, o, found := strings.Cut(v, "=")
	if !found || q == "" || o == "" {
		return fmt.Errorf("want qID=oID, got %q", v)
	}
	s[q] = o
	return nil
}

func runAnswer(ctx context.Context, client *graphql.Client, sess session.Session, args []string) error {
	fs := flag.NewFlagSet("answer", flag.ExitOnError)
	picks := selections{}
	fs.Var(picks, "select", "select an option, qID=oID (repeatable)")
	submit := fs.Bool("submit", false, "submit the full answer set after applying selections")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: mindlab answer <surveyId> [-select qID=oID]... [-submit]")
		os.Exit(2)
	}
	surveyID := fs.Arg(0)

	eng := engine.New(client, sess)
	if err := eng.LoadSurvey(ctx, surveyID); err != nil {
		return err
	}
	for q, o := range picks {
		if err := eng.SelectOption(q, o); err != nil {
			return fmt.Errorf("select %s=%s: %w", q, o, err)
		}
	}
	if *submit {
		if err := eng.SubmitAnswers(ctx); err != nil {
			return err
		}
		fmt.Printf("submitted; revision %d\n", eng.Revision())
	}

	fmt.Printf("%s\n", eng.Title())
	if desc := eng.Description(); desc != "" {
		fmt.Printf("%s\n", desc)
	}
	for _, q := range eng.Questions() {
		fmt.Printf("\n[%s] %s\n", q.QID, q.Text)
		for _, o := range q.Options {
			mark := " "
			if q.Selected != nil && q.Selected.OID == o.OID {
				mark = "x"
			}
			fmt.Printf("  [%s] (%s) %s\n", mark, o.OID, o.Text)
		}
	}
	return nil
}
