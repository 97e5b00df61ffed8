// Package handlers implements the HTTP handlers of the spell-correction API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/contextspell/internal/corrector"
)

// SpellHandler serves correction and candidate queries against one
// corrector instance.
type SpellHandler struct {
	Corrector *corrector.SpellCorrector
}

// FixRequest is the body of the fix endpoints.
type FixRequest struct {
	Text string `json:"text"`
}

// FixResponse carries the corrected text.
type FixResponse struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// CandidatesRequest asks for candidates at one sentence position.
type CandidatesRequest struct {
	Sentence []string `json:"sentence"`
	Position int      `json:"position"`
}

// CandidatesResponse lists scored candidates, best first.
type CandidatesResponse struct {
	Candidates []corrector.ScoredWord `json:"candidates"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Health reports liveness and whether a model is loaded.
func (h *SpellHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.Corrector.GetLangModel()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"model_loaded": err == nil,
	})
}

// Fix corrects a text fragment, preserving formatting and casing.
func (h *SpellHandler) Fix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, FixResponse{
		Original:  req.Text,
		Corrected: h.Corrector.FixFragment(req.Text),
	})
}

// FixNormalized corrects a text fragment and returns it in normalized form.
func (h *SpellHandler) FixNormalized(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, FixResponse{
		Original:  req.Text,
		Corrected: h.Corrector.FixFragmentNormalized(req.Text),
	})
}

// Candidates returns scored candidates for one position of a tokenized
// sentence. Out-of-range positions yield an empty list, not an error.
func (h *SpellHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	var req CandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	scored := h.Corrector.GetCandidatesScored(req.Sentence, req.Position)
	if scored == nil {
		scored = []corrector.ScoredWord{}
	}
	writeJSON(w, http.StatusOK, CandidatesResponse{Candidates: scored})
}

// AllCandidates scans a whole fragment and reports every misspelling with
// its scored candidates.
func (h *SpellHandler) AllCandidates(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.Corrector.GetALLCandidatesScoredJSON(req.Text)))
}

// Stats returns model statistics.
func (h *SpellHandler) Stats(w http.ResponseWriter, r *http.Request) {
	model, err := h.Corrector.GetLangModel()
	if err != nil {
		if errors.Is(err, corrector.ErrNoModel) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Stats())
}

// AddWord adds a custom dictionary word.
func (h *SpellHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(mux.Vars(r)["word"])
	if word == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty word"))
		return
	}
	if err := h.Corrector.AddWord(r.Context(), word); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"added": word})
}

// RemoveWord removes a custom dictionary word.
func (h *SpellHandler) RemoveWord(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(mux.Vars(r)["word"])
	if word == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty word"))
		return
	}
	if err := h.Corrector.RemoveWord(r.Context(), word); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": word})
}
