package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	telsvc "github.com/iamnno/IES/internal/services/telemetry"
	"github.com/iamnno/IES/internal/store"
	tel "github.com/iamnno/IES/internal/telemetry"
	logpkg "github.com/iamnno/IES/pkg/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

type ingestResp struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var batch []tel.WireRecord
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	ids, err := s.rt.Telemetry().Ingest(r.Context(), batch)
	if err != nil {
		if errors.Is(err, telsvc.ErrMalformedBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("ingest failed", logpkg.Err(err), logpkg.Int("stored", len(ids)))
		writeError(w, http.StatusInternalServerError, "persistence failure")
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, ingestResp{IDs: ids})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.rt.Telemetry().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []tel.Record{}
	}
	writeJSON(w, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := s.rt.Telemetry().Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var wire tel.WireRecord
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	rec, err := s.rt.Telemetry().Update(r.Context(), id, wire)
	if err != nil {
		if errors.Is(err, telsvc.ErrMalformedBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := s.rt.Telemetry().Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, rec)
}

type purgeReq struct {
	OlderThan time.Time `json:"older_than"`
}

type purgeResp struct {
	Purged int `json:"purged"`
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	var req purgeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.OlderThan.IsZero() {
		writeError(w, http.StatusBadRequest, "older_than is required")
		return
	}
	n, err := s.rt.Telemetry().PurgeOlderThan(r.Context(), req.OlderThan)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, purgeResp{Purged: n})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
