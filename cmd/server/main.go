package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mindlab-app/mindlab/internal/api"
	"github.com/mindlab-app/mindlab/internal/db"
	"github.com/mindlab-app/mindlab/internal/middleware"
	"github.com/mindlab-app/mindlab/internal/utils"
)

func main() {
	_ = godotenv.Load()
	seed := flag.Bool("seed", false, "insert a sample public survey on startup")
	flag.Parse()

	addr := utils.SafeEnv("MINDLAB_ADDR", ":8080")

	var store api.Store
	if path := os.Getenv("MINDLAB_DB_PATH"); path != "" {
		conn, err := db.Open(path)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer conn.Close()
		store, err = db.NewStore(conn)
		if err != nil {
			log.Fatalf("init sqlite store: %v", err)
		}
		log.Printf("using sqlite store at %s", path)
	} else {
		store = api.NewMemoryStore()
		log.Printf("using in-memory store; set MINDLAB_DB_PATH to persist")
	}

	if *seed {
		sid := api.Seed(store)
		log.Printf("seeded sample survey %s", sid)
	}

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)
	handler := middleware.CORS(middleware.SecureHeaders(middleware.WithAuth(mux)))

	log.Printf("mindlab server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
