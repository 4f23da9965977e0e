package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
)

type mintRequest struct {
	To         string             `json:"to"`
	Attributes *models.Attributes `json:"attributes,omitempty"`
}

type mintResponse struct {
	ID domain.RecordID `json:"id"`
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "recipient"))
		return
	}

	var id domain.RecordID
	if req.Attributes != nil {
		id, err = h.lifecycle.MintWithAttributes(r.Context(), to, *req.Attributes)
	} else {
		id, err = h.lifecycle.Mint(r.Context(), to)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mintResponse{ID: id})
}

type batchMintRequest struct {
	Recipients []string `json:"recipients"`
}

type batchMintResponse struct {
	IDs []domain.RecordID `json:"ids"`
}

func (h *Handler) handleBatchMint(w http.ResponseWriter, r *http.Request) {
	var req batchMintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}

	recipients := make([]domain.Address, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "recipient"))
			return
		}
		recipients = append(recipients, addr)
	}

	ids, err := h.lifecycle.BatchMint(r.Context(), recipients)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchMintResponse{IDs: ids})
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "record id"))
		return
	}

	view, err := h.lifecycle.Record(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "record id"))
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}
	from, err := domain.ParseAddress(req.From)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "from"))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "to"))
		return
	}

	if err := h.lifecycle.Transfer(r.Context(), from, to, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAttributesRequest struct {
	Attributes models.Attributes `json:"attributes"`
}

func (h *Handler) handleSetAttributes(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "record id"))
		return
	}

	var req setAttributesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}

	if err := h.lifecycle.SetAttributes(r.Context(), id, req.Attributes); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "record id"))
		return
	}

	if err := h.lifecycle.Burn(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
