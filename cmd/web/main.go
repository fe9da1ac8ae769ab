package main

import (
	"log"
	"net/http"

	"github.com/AdamBeresnev/tourny-app/internal/config"
	"github.com/AdamBeresnev/tourny-app/internal/db"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	"github.com/AdamBeresnev/tourny-app/internal/service"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsURL); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	middleware.InitAuth()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLife
	sessionManager.Store = sqlite3store.New(database.DB)

	tournamentStore := store.NewTournamentStore(database)

	if cfg.ReconcileInterval > 0 {
		reconciler := service.NewStatusReconciler(tournamentStore)
		if err := reconciler.Start(cfg.ReconcileInterval); err != nil {
			log.Fatal("Failed to start status reconciler: ", err)
		}
		defer reconciler.Stop()
	}

	app := &application{
		sessionManager: sessionManager,
		userStore:      store.NewUserStore(database),
		tournaments:    service.NewTournamentService(database, tournamentStore, cfg.SizePolicy),
		matches:        service.NewMatchService(database, tournamentStore, cfg.RevisionPolicy),
		users:          service.NewUserService(store.NewUserStore(database)),
		resultLimiter:  middleware.NewRateLimiter(cfg.ResultRateLimit, cfg.ResultRateBurst),
		sizePolicy:     cfg.SizePolicy,
	}

	log.Printf("Server starting on http://localhost%s (size policy %s, revision policy %s)", cfg.Addr(), cfg.SizePolicy, cfg.RevisionPolicy)
	if err := http.ListenAndServe(cfg.Addr(), newRouter(app)); err != nil {
		log.Fatal(err)
	}
}
