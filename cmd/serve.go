package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fixhub/estimator-cli/internal/estimator"
	"github.com/fixhub/estimator-cli/internal/extraction"
	"github.com/fixhub/estimator-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for material estimates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Estimator, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// estimateRequest is the POST /estimates body.
type estimateRequest struct {
	JobID          string   `json:"job_id"`
	JobDescription string   `json:"job_description"`
	ServiceType    string   `json:"service_type"`
	Location       string   `json:"location,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
}

// newRouter wires the estimate API. The frontend calls this surface
// directly, so CORS is applied across the board.
func newRouter(est *estimator.Estimator, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/estimates", func(w http.ResponseWriter, r *http.Request) {
		var req estimateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.JobID == "" {
			writeError(w, http.StatusBadRequest, "job_id is required")
			return
		}

		extReq := model.NewExtractionRequest(req.JobDescription, req.ServiceType, req.Location, req.Urgency, req.Budget)

		result, err := est.GenerateEstimate(r.Context(), req.JobID, extReq)
		if err != nil {
			writeEstimateError(w, req.JobID, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/estimates/{jobID}", func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")

		result, err := est.GetEstimate(r.Context(), jobID)
		if err != nil {
			zap.L().Error("get estimate failed", zap.String("job_id", jobID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "store unavailable")
			return
		}
		if result == nil {
			writeError(w, http.StatusNotFound, "no estimate for job")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/templates/init", func(w http.ResponseWriter, r *http.Request) {
		count, err := est.InitializeTemplates(r.Context())
		if err != nil {
			zap.L().Error("template seeding failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "template seeding failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "seeded": count})
	})

	r.Get("/templates", func(w http.ResponseWriter, r *http.Request) {
		templates, err := est.ListTemplates(r.Context())
		if err != nil {
			zap.L().Error("list templates failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "store unavailable")
			return
		}
		if templates == nil {
			templates = []model.MaterialTemplate{}
		}
		writeJSON(w, http.StatusOK, templates)
	})

	return r
}

// writeEstimateError maps pipeline failures onto status codes: bad input is
// the caller's fault, upstream/store failures are ours. Internal detail
// (prompts, stack traces) never reaches the response body.
func writeEstimateError(w http.ResponseWriter, jobID string, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, extraction.ErrExtraction):
		zap.L().Error("extraction failed", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "extraction service unavailable")
	default:
		zap.L().Error("estimate failed", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "estimate could not be saved")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
