package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/httputil"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	"github.com/AdamBeresnev/tourny-app/internal/service"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/AdamBeresnev/tourny-app/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

type application struct {
	sessionManager *scs.SessionManager
	userStore      *store.UserStore
	tournaments    *service.TournamentService
	matches        *service.MatchService
	users          *service.UserService
	resultLimiter  *middleware.RateLimiter
	sizePolicy     bracket.SizePolicy
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.NotFound(w, "Not found", err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) login(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserKey, userID.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.userStore))

	// Serve static files
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query().Get("q")
			tournaments, err := app.tournaments.GetTournamentsForUser(r.Context(), query)
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournaments", err)
				return
			}
			views.Render(w, r, views.Index(tournaments, query))
		})

		r.Get("/tournaments/create", func(w http.ResponseWriter, r *http.Request) {
			views.Render(w, r, views.CreateTournamentPage(app.sizePolicy == bracket.SizePowerOfTwo))
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}

			tournament, err := app.createTournament(r)
			if err != nil {
				if isHTMX(r) && errors.Is(err, bracket.ErrInvalidInput) {
					views.Render(w, r, views.FormError(err.Error()))
					return
				}
				httputil.WriteError(w, "Failed to create tournament", err)
				return
			}
			redirect(w, r, fmt.Sprintf("/tournaments/%s", tournament.ID))
		})

		r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			data, err := app.tournaments.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.WriteError(w, "Tournament", err)
				return
			}
			views.Render(w, r, views.TournamentView(data))
		})

		r.Get("/t/{slug}", func(w http.ResponseWriter, r *http.Request) {
			tournament, err := app.tournaments.GetTournamentBySlug(r.Context(), chi.URLParam(r, "slug"))
			if err != nil {
				httputil.WriteError(w, "Tournament", err)
				return
			}
			http.Redirect(w, r, fmt.Sprintf("/tournaments/%s", tournament.ID), http.StatusFound)
		})

		r.Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			data, err := app.matches.GetMatchViewData(r.Context(), id)
			if err != nil {
				httputil.WriteError(w, "Match", err)
				return
			}
			views.Render(w, r, views.MatchView(data))
		})

		r.With(app.resultLimiter.Middleware).Post("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
			matchID, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			winnerID, err := uuid.Parse(r.Form.Get("winner_id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid winner ID", err)
				return
			}

			res, err := app.matches.RecordResult(r.Context(), matchID, winnerID)
			if err != nil {
				httputil.WriteError(w, "Failed to record result", err)
				return
			}

			data, err := app.matches.GetMatchViewData(r.Context(), matchID)
			if err != nil {
				httputil.InternalServerError(w, "Failed to get next match info", err)
				return
			}
			winner := ""
			if data.Winner != nil {
				winner = data.Winner.Name
			}
			views.Render(w, r, views.MatchResult(res, winner, data.NextMatchID))
		})

		r.Get("/archive", func(w http.ResponseWriter, r *http.Request) {
			archive, err := app.tournaments.GetArchive(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get archive", err)
				return
			}
			views.Render(w, r, views.ArchivePage(archive))
		})

		r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			entries, err := app.tournaments.GetLeaderboard(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get leaderboard", err)
				return
			}
			views.Render(w, r, views.LeaderboardPage(entries))
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}
		app.login(w, r, user.ID)
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, r, views.LoginPage())
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := app.users.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}
		app.login(w, r, user.ID)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := app.sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to log out", err)
			return
		}
		if isHTMX(r) {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	return r
}

// createTournament reads the creation form. Participants come from a textarea
// with one name per line or from repeated participants fields.
func (app *application) createTournament(r *http.Request) (*bracket.Tournament, error) {
	names, err := service.ParseParticipantNames(strings.Join(r.Form["participants"], "\n"))
	if err != nil {
		return nil, err
	}

	var date time.Time
	if s := strings.TrimSpace(r.Form.Get("date")); s != "" {
		if date, err = time.Parse(time.DateOnly, s); err != nil {
			return nil, fmt.Errorf("%w: date must look like 2026-01-31", bracket.ErrInvalidInput)
		}
	}

	return app.tournaments.CreateTournament(r.Context(), service.TournamentInput{
		Name:         r.Form.Get("name"),
		Date:         date,
		Participants: names,
	})
}
