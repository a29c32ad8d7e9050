package gateapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
	"github.com/pulsescalp/channel-gate/internal/registry"
	"github.com/pulsescalp/channel-gate/internal/verifier"
)

// Error codes surfaced to API callers.
const (
	codeInvalidChannelID    = "INVALID_CHANNEL_ID"
	codeInvalidChannelTitle = "INVALID_CHANNEL_TITLE"
	codeChannelNotFound     = "CHANNEL_NOT_FOUND"
	codeBadRequest          = "BAD_REQUEST"
	codeInternal            = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type verifyResponse struct {
	Passed bool `json:"passed"`
	verifier.Check
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	channels, err := s.registry.ListAll(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var in registry.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, "request body is not valid JSON")

		return
	}

	saved, err := s.registry.Upsert(r.Context(), in)
	if err != nil {
		s.writeDomainError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, "user id must be an integer")

		return
	}

	check, err := s.verifier.Verify(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, verifyResponse{
		Passed: check.Passed(),
		Check:  check,
	})
}

// writeDomainError maps registry/store errors to stable API error codes.
// Validation and not-found failures are caller mistakes and not logged as
// server faults.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidChannelID):
		s.writeError(w, http.StatusBadRequest, codeInvalidChannelID, "channel id must be non-empty")
	case apperrors.Is(err, apperrors.ErrInvalidChannelTitle):
		s.writeError(w, http.StatusBadRequest, codeInvalidChannelTitle, "channel title must be non-empty")
	case apperrors.Is(err, apperrors.ErrChannelNotFound):
		s.writeError(w, http.StatusNotFound, codeChannelNotFound, "no channel with that id")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("gate API request failed")
		s.writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response body")
	}
}
