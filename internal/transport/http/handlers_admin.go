package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gemreg/internal/access"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
)

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Pause(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Unpause(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleRequest struct {
	Role    string `json:"role"`
	Address string `json:"address"`
}

func (h *Handler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.access.Grant)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.access.Revoke)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, role access.Role, addr domain.Address) error) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "role"))
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "address"))
		return
	}

	if err := apply(r.Context(), role, addr); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type membersResponse struct {
	Role    access.Role      `json:"role"`
	Members []domain.Address `json:"members"`
}

func (h *Handler) handleRoleMembers(w http.ResponseWriter, r *http.Request) {
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeInvalidArgument, "role"))
		return
	}

	members, err := h.access.Members(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{Role: role, Members: members})
}

func (h *Handler) handleEnableEnforcement(w http.ResponseWriter, r *http.Request) {
	if err := h.compliance.Enable(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDisableEnforcement(w http.ResponseWriter, r *http.Request) {
	if err := h.compliance.Disable(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type oracleRequest struct {
	AllowKey string `json:"allow_key"`
	DenyKey  string `json:"deny_key"`
}

// handleSetOracle replaces the gate's oracle with one reading different
// backend keys. The swap is atomic and takes effect on the next check.
func (h *Handler) handleSetOracle(w http.ResponseWriter, r *http.Request) {
	if h.oracles == nil {
		writeError(w, domerr.New(domerr.CodeUnavailable, "no swappable oracle backend configured"))
		return
	}

	var req oracleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "invalid request body"))
		return
	}
	if req.AllowKey == "" || req.DenyKey == "" {
		writeError(w, domerr.New(domerr.CodeInvalidArgument, "allow_key and deny_key are required"))
		return
	}

	oracle, err := h.oracles(req.AllowKey, req.DenyKey)
	if err != nil {
		writeError(w, domerr.Wrap(err, domerr.CodeUnavailable, "build oracle"))
		return
	}
	if err := h.compliance.SetOracle(r.Context(), oracle, req.AllowKey+"/"+req.DenyKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
