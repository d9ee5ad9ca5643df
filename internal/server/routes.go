package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rangeboard/internal/config"
	"rangeboard/internal/db"
	"rangeboard/internal/livehub"
	"rangeboard/internal/stats"
	"rangeboard/internal/uploads"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] No .env file loaded: %v\n", err)
	}
	cfg := config.Load()

	srv := &Server{
		Cfg:     cfg,
		Uploads: uploads.NewStore(time.Duration(cfg.UploadTTLMinutes) * time.Minute),
		Hub:     livehub.NewHub(),
	}

	// Optional database connection; upload and grouping work without
	// one, persistence and the read endpoints need it.
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			srv.Stats = stats.NewQueries(database)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	r := srv.Router()

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, cors(r))
}

// Router wires every endpoint. Split from Run so tests can mount the
// same routes on an httptest server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/upload", s.handleUpload).Methods("POST")
	r.HandleFunc("/upload/{batchID}", s.handleBatch).Methods("GET")

	r.HandleFunc("/scores", s.handleScores).Methods("GET")
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")
	r.HandleFunc("/stats/{username}", s.handlePlayerStats).Methods("GET")
	r.HandleFunc("/stats/{username}/sessions", s.handlePlayerSessions).Methods("GET")
	r.HandleFunc("/session/visualCues/{sessionID}", s.handleVisualCues).Methods("GET")
	r.HandleFunc("/live", s.handleLive).Methods("GET")

	save := r.PathPrefix("/sessions").Subrouter()
	save.Use(s.requireAdmin)
	save.HandleFunc("/save", s.handleSave).Methods("POST")

	return r
}
