package web

import (
	"net/http"
	"time"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	governance "github.com/louisbranch/crowdvault/internal/governance/domain"
	governanceservice "github.com/louisbranch/crowdvault/internal/governance/service"
)

type proposalView struct {
	ID         string     `json:"id"`
	CampaignID string     `json:"campaign_id"`
	Proposer   string     `json:"proposer"`
	Type       string     `json:"type"`
	ListPrice  uint64     `json:"list_price,omitempty"`
	Approvals  uint64     `json:"approvals"`
	Rejections uint64     `json:"rejections"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

func newProposalView(p governance.Proposal) proposalView {
	view := proposalView{
		ID:         p.ID,
		CampaignID: p.CampaignID,
		Proposer:   p.Proposer,
		Type:       p.Type.String(),
		ListPrice:  p.ListPrice,
		Approvals:  p.Approvals.Weight,
		Rejections: p.Rejections.Weight,
		Status:     p.Status.String(),
		CreatedAt:  p.CreatedAt,
	}
	if !p.EndedAt.IsZero() {
		ended := p.EndedAt
		view.EndedAt = &ended
	}
	return view
}

type createProposalRequest struct {
	Type      string `json:"type"`
	ListPrice uint64 `json:"list_price,omitempty"`
}

type createProposalResponse struct {
	Proposal       proposalView `json:"proposal"`
	ProposerWeight uint64       `json:"proposer_weight"`
	Passed         bool         `json:"passed,omitempty"`
}

func (h *Handler) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	claims, err := h.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req createProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.governance.CreateProposal(r.Context(), governanceservice.CreateProposalInput{
		CampaignID: campaignID,
		Proposer:   claims.Subject,
		Type:       governance.TypeFromString(req.Type),
		ListPrice:  req.ListPrice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createProposalResponse{
		Proposal:       newProposalView(result.Proposal),
		ProposerWeight: result.ProposerWeight,
		Passed:         result.Passed,
	})
}

func (h *Handler) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	proposalID, err := pathID(r, "proposalID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	proposal, err := h.governance.GetProposal(r.Context(), proposalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProposalView(proposal))
}

type listProposalsResponse struct {
	Proposals     []proposalView `json:"proposals"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (h *Handler) handleListProposals(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	pageSize := queryInt(r, "page_size", 0)
	page, err := h.governance.ListProposals(r.Context(), campaignID, pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := listProposalsResponse{
		Proposals:     make([]proposalView, 0, len(page.Proposals)),
		NextPageToken: page.NextPageToken,
	}
	for _, proposal := range page.Proposals {
		response.Proposals = append(response.Proposals, newProposalView(proposal))
	}
	writeJSON(w, http.StatusOK, response)
}

type voteRequest struct {
	Choice string `json:"choice"`
}

type voteResponse struct {
	Proposal proposalView `json:"proposal"`
	Weight   uint64       `json:"weight"`
	Outcome  string       `json:"outcome,omitempty"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	claims, err := h.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proposalID, err := pathID(r, "proposalID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	choice := governance.VoteChoiceFromString(req.Choice)
	if choice == governance.VoteUnspecified {
		writeError(w, r, apperrors.Newf(apperrors.CodeVoteTypeInvalid, "unknown vote choice %q", req.Choice))
		return
	}

	result, err := h.governance.Vote(r.Context(), proposalID, claims.Subject, choice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := voteResponse{
		Proposal: newProposalView(result.Proposal),
		Weight:   result.Weight,
	}
	if result.Outcome != governance.StatusUnspecified {
		response.Outcome = result.Outcome.String()
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleDeleteProposal(w http.ResponseWriter, r *http.Request) {
	claims, err := h.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proposalID, err := pathID(r, "proposalID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.governance.DeleteProposal(r.Context(), proposalID, claims.Subject); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
