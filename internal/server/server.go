package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/leaderboard"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
	"github.com/whenToSleep/race-info-bot/internal/source"
	"github.com/whenToSleep/race-info-bot/internal/state"
	"github.com/whenToSleep/race-info-bot/internal/util"
)

type Deps struct {
	Store        *state.Store
	Source       source.Provider
	Race         raceclock.Config
	ExportSecret string
	Now          func() time.Time
}

func New(addr string, d Deps, log logger.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(d, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func Handler(d Deps, log logger.Logger) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		st := raceclock.Describe(d.Now(), d.Race)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"race":           st,
			"status":         st.Text(),
			"audiences":      len(d.Store.Audiences()),
			"tracking_users": len(d.Store.TrackingUsers()),
			"ts":             util.NowISO(),
		})
	})

	// CSV export (link with token = HMAC of the milestone)
	mux.HandleFunc("/export/leaderboard.csv", func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("milestone")
		token := r.URL.Query().Get("token")
		if raw == "" || token == "" {
			http.Error(w, "milestone and token required", http.StatusBadRequest)
			return
		}
		if !util.ValidHMAC(d.ExportSecret, exportMessage(raw), token) {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		m, err := models.ParseMilestone(raw)
		if err != nil {
			http.Error(w, "invalid milestone", http.StatusBadRequest)
			return
		}

		snap, err := d.Source.LoadSnapshot(r.Context())
		if err != nil {
			log.Error("export leaderboard", "milestone", raw, "error", err)
			http.Error(w, "race data unavailable", http.StatusServiceUnavailable)
			return
		}
		board, err := leaderboard.Build(snap, m, d.Race.TotalLaps)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, apperrors.ErrInvalidLap) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="leaderboard_`+raw+`.csv"`)
		if err := leaderboard.WriteCSV(w, board); err != nil {
			log.Error("write csv", "error", err)
		}
	})

	return logger.HTTPLogger(log)(mux)
}

func exportMessage(milestone string) string {
	return "export:" + milestone
}

// ExportURL builds a signed export link for milestone ("start", "final" or
// a lap number) under base, e.g. "http://localhost:8080".
func ExportURL(base, secret, milestone string) string {
	q := url.Values{}
	q.Set("milestone", milestone)
	q.Set("token", util.HMACSHA256Hex(secret, exportMessage(milestone)))
	return base + "/export/leaderboard.csv?" + q.Encode()
}
