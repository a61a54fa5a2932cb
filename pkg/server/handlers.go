package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/datamaps/pkg/buildinfo"
	"github.com/matzehuels/datamaps/pkg/cache"
	"github.com/matzehuels/datamaps/pkg/datamaps"
	dmerrors "github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/export"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/store"
	"github.com/matzehuels/datamaps/pkg/topology"
)

type saveRequest struct {
	Name   string    `json:"name"`
	Config merge.Map `json:"config"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleScopes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"scopes": topology.Scopes()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	defs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"maps": defs})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, dmerrors.Wrap(dmerrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if req.Config == nil {
		s.writeError(w, dmerrors.New(dmerrors.ErrCodeInvalidInput, "config is required"))
		return
	}
	// Definitions are validated by drawing them once.
	if _, err := s.build(r.Context(), req.Config); err != nil {
		s.writeError(w, err)
		return
	}

	def := store.NewDefinition(req.Name, req.Config)
	if err := s.store.Save(r.Context(), def); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("saved map", "id", def.ID, "name", def.Name)
	w.Header().Set("Location", "/v1/maps/"+def.ID)
	s.writeJSON(w, http.StatusCreated, def)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	ext := path.Ext(ref)
	base := strings.TrimSuffix(ref, ext)
	format, err := export.ParseFormat(ext)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var cfg merge.Map
	if dmerrors.ValidateMapID(base) == nil {
		def, err := s.store.Get(r.Context(), base)
		if err != nil {
			s.writeError(w, err)
			return
		}
		cfg = def.Config
	} else {
		if ext == "" {
			s.writeError(w, dmerrors.New(dmerrors.ErrCodeInvalidInput, "scope renders need an extension, as in /v1/maps/%s.svg", base))
			return
		}
		if cfg, err = scopeConfig(base, r); err != nil {
			s.writeError(w, err)
			return
		}
	}

	out, err := s.render(r.Context(), cfg, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	def, err := s.store.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ref")
	if err := dmerrors.ValidateMapID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// scopeConfig builds the configuration of a bare scope render from the
// query string.
func scopeConfig(scope string, r *http.Request) (merge.Map, error) {
	if err := dmerrors.ValidateScope(scope); err != nil {
		return nil, err
	}
	q := r.URL.Query()
	cfg := merge.Map{"scope": scope}
	if v := q.Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil || width <= 0 {
			return nil, dmerrors.New(dmerrors.ErrCodeInvalidInput, "invalid width %q", v)
		}
		cfg["width"] = width
	}
	if v := q.Get("projection"); v != "" {
		cfg["projection"] = v
	}
	for _, key := range []string{"graticule", "labels", "responsive"} {
		on, _ := strconv.ParseBool(q.Get(key))
		if !on {
			continue
		}
		if key == "labels" {
			cfg[key] = merge.Map{}
		} else {
			cfg[key] = true
		}
	}
	return cfg, nil
}

func (s *Server) build(ctx context.Context, cfg merge.Map) (*datamaps.Map, error) {
	return datamaps.Build(ctx, cfg, datamaps.WithFetcher(s.fetcher), datamaps.WithLogger(s.logger))
}

// render returns the document for cfg in format, from the cache when
// possible.
func (s *Server) render(ctx context.Context, cfg merge.Map, format string) ([]byte, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, dmerrors.Wrap(dmerrors.ErrCodeInvalidConfig, err, "map configuration is not serializable")
	}
	scope, _ := cfg["scope"].(string)
	key := s.keyer.RenderKey(cache.RenderKeyOpts{Scope: scope, ConfigHash: cache.Hash(raw), Format: format})

	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("render cache read failed", "err", err)
	} else if hit {
		return data, nil
	}

	m, err := s.build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return nil, dmerrors.Wrap(dmerrors.ErrCodeInternal, err, "render map")
	}
	out, err := export.Export(ctx, s.converter, buf.Bytes(), format, export.DefaultScale)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("render cache write failed", "err", err)
	}
	return out, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := dmerrors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	code := string(dmerrors.GetCode(err))
	if code == "" {
		code = string(dmerrors.ErrCodeInternal)
	}
	s.writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: dmerrors.UserMessage(err)}})
}
