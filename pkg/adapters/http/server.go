// Package http exposes checkpointed swarm state over HTTP: load, merge and
// migrate operations on named checkpoints, plus health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/pkg/checkpoint"
	"github.com/aretw0/swarmstate/pkg/migrate"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Server handles checkpoint state requests.
type Server struct {
	manager  *checkpoint.Manager
	migrator *migrate.Migrator
	fields   *registry.Registry
	log      *slog.Logger
}

// Config wires the server's collaborators. All fields except Logger are
// required.
type Config struct {
	Manager  *checkpoint.Manager
	Migrator *migrate.Migrator
	Fields   *registry.Registry
	Logger   *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	s := &Server{
		manager:  cfg.Manager,
		migrator: cfg.Migrator,
		fields:   cfg.Fields,
		log:      log,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/checkpoints", s.list)
	r.Route("/checkpoints/{id}", func(r chi.Router) {
		r.Get("/", s.get)
		r.Put("/", s.put)
		r.Delete("/", s.delete)
		r.Post("/merge", s.merge)
		r.Post("/migrate", s.migrate)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "ok",
		"schema_version": s.migrator.CurrentVersion(),
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list checkpoints", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkpoints": ids})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	st, err := s.manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ports.ErrCheckpointNotFound) {
			http.Error(w, "checkpoint not found", http.StatusNotFound)
			return
		}
		s.fail(w, http.StatusInternalServerError, "load checkpoint", err)
		return
	}
	s.writeState(w, st)
}

// put replaces a checkpoint wholesale. The body must be a serialized state;
// it is leniently validated before being stored.
func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	st, ok := s.decodeState(w, r)
	if !ok {
		return
	}
	if err := s.fields.ValidateState(st, false); err != nil {
		http.Error(w, fmt.Sprintf("invalid state: %v", err), http.StatusUnprocessableEntity)
		return
	}
	if err := s.manager.Save(r.Context(), chi.URLParam(r, "id"), st); err != nil {
		s.fail(w, http.StatusInternalServerError, "save checkpoint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, http.StatusInternalServerError, "delete checkpoint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// merge applies a partial update to a checkpoint through the reducer engine.
// A missing checkpoint starts from the registry defaults, so the first merge
// against a fresh ID works without a prior PUT.
func (s *Server) merge(w http.ResponseWriter, r *http.Request) {
	var update map[string]any
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.log.Warn("merge: invalid request body", "err", err)
		return
	}

	merged, err := s.manager.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "merge checkpoint", err)
		return
	}
	s.writeState(w, merged)
}

// migrate brings a checkpoint to a requested schema version, or to the
// current version when the body omits a target. Load, migrate and save run
// under the checkpoint's lock so a concurrent merge cannot interleave.
func (s *Server) migrate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string `json:"target"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	id := chi.URLParam(r, "id")

	var migrated state.State
	err := s.manager.WithLock(r.Context(), id, func(ctx context.Context) error {
		st, err := s.manager.Store().Load(ctx, id)
		if err != nil {
			return err
		}

		if body.Target == "" {
			migrated, _, err = s.migrator.AutoMigrate(st)
		} else {
			migrated, err = s.migrator.Migrate(st, body.Target)
		}
		if err != nil {
			return err
		}
		return s.manager.Store().Save(ctx, id, migrated)
	})
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrCheckpointNotFound):
			http.Error(w, "checkpoint not found", http.StatusNotFound)
		case isVersionError(err):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("migration failed: %v", err), http.StatusUnprocessableEntity)
		}
		return
	}
	s.writeState(w, migrated)
}

func isVersionError(err error) bool {
	var verr *migrate.VersionError
	return errors.As(err, &verr)
}

func (s *Server) decodeState(w http.ResponseWriter, r *http.Request) (state.State, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	st, err := state.Deserialize(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid state document: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return st, true
}

func (s *Server) writeState(w http.ResponseWriter, st state.State) {
	data, err := state.Serialize(st)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "serialize state", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error("write response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, op string, err error) {
	s.log.Error(op, "err", err)
	http.Error(w, fmt.Sprintf("%s: %v", op, err), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
