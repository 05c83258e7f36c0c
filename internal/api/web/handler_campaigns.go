package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/louisbranch/crowdvault/internal/asset"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
)

type contributionView struct {
	Contributor   string    `json:"contributor"`
	Amount        uint64    `json:"amount"`
	ContributedAt time.Time `json:"contributed_at"`
}

type campaignView struct {
	ID              string             `json:"id"`
	AssetID         string             `json:"asset_id"`
	Name            string             `json:"name"`
	Creator         string             `json:"creator"`
	Target          uint64             `json:"target"`
	MinContribution uint64             `json:"min_contribution"`
	Pool            uint64             `json:"pool"`
	Status          string             `json:"status"`
	Contributions   []contributionView `json:"contributions"`
	CreatedAt       time.Time          `json:"created_at"`
}

func newCampaignView(c funding.Campaign) campaignView {
	view := campaignView{
		ID:              c.ID,
		AssetID:         c.AssetID,
		Name:            c.Name,
		Creator:         c.Creator,
		Target:          c.Target,
		MinContribution: c.MinContribution,
		Pool:            c.Pool,
		Status:          c.Status.String(),
		Contributions:   make([]contributionView, 0, len(c.Contributors)),
		CreatedAt:       c.CreatedAt,
	}
	for _, addr := range c.Contributors {
		record := c.Contributions[addr]
		view.Contributions = append(view.Contributions, contributionView{
			Contributor:   addr,
			Amount:        record.Amount,
			ContributedAt: record.ContributedAt,
		})
	}
	return view
}

type assetView struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	Purchased    bool      `json:"purchased"`
	Listed       bool      `json:"listed"`
	ListPrice    uint64    `json:"list_price,omitempty"`
	PayoutWallet string    `json:"payout_wallet,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newAssetView(a asset.Asset) assetView {
	return assetView{
		ID:           a.ID,
		CampaignID:   a.CampaignID,
		Purchased:    a.Purchased,
		Listed:       a.Listed,
		ListPrice:    a.ListPrice,
		PayoutWallet: a.PayoutWallet,
		UpdatedAt:    a.UpdatedAt,
	}
}

type createCampaignRequest struct {
	AssetID         string `json:"asset_id"`
	Name            string `json:"name"`
	Target          uint64 `json:"target"`
	MinContribution uint64 `json:"min_contribution"`
	InitialDeposit  uint64 `json:"initial_deposit"`
}

type contributionReceipt struct {
	Fee            uint64 `json:"fee"`
	Net            uint64 `json:"net"`
	Credited       uint64 `json:"credited"`
	Refunded       uint64 `json:"refunded,omitempty"`
	NewContributor bool   `json:"new_contributor,omitempty"`
	Completed      bool   `json:"completed,omitempty"`
}

type createCampaignResponse struct {
	Campaign campaignView        `json:"campaign"`
	Receipt  contributionReceipt `json:"receipt"`
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	claims, err := h.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createCampaignRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.funding.CreateCampaign(r.Context(), funding.CreateCampaignInput{
		AssetID:         req.AssetID,
		Name:            req.Name,
		Creator:         claims.Subject,
		Target:          req.Target,
		MinContribution: req.MinContribution,
		InitialDeposit:  req.InitialDeposit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCampaignResponse{
		Campaign: newCampaignView(result.Campaign),
		Receipt:  newReceipt(result.Contribution),
	})
}

func newReceipt(result funding.ContributeResult) contributionReceipt {
	return contributionReceipt{
		Fee:            result.Fee,
		Net:            result.Net,
		Credited:       result.Credited,
		Refunded:       result.Refunded,
		NewContributor: result.NewContributor,
		Completed:      result.Completed,
	}
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	campaign, err := h.funding.GetCampaign(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCampaignView(campaign))
}

type listCampaignsResponse struct {
	Campaigns     []campaignView `json:"campaigns"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	pageSize := queryInt(r, "page_size", 0)
	page, err := h.funding.ListCampaigns(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := listCampaignsResponse{
		Campaigns:     make([]campaignView, 0, len(page.Campaigns)),
		NextPageToken: page.NextPageToken,
	}
	for _, campaign := range page.Campaigns {
		response.Campaigns = append(response.Campaigns, newCampaignView(campaign))
	}
	writeJSON(w, http.StatusOK, response)
}

type contributeRequest struct {
	Deposit uint64 `json:"deposit"`
}

type contributeResponse struct {
	Campaign campaignView        `json:"campaign"`
	Receipt  contributionReceipt `json:"receipt"`
}

func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
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
	var req contributeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.funding.Contribute(r.Context(), campaignID, funding.ContributeInput{
		Caller:  claims.Subject,
		Deposit: req.Deposit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contributeResponse{
		Campaign: newCampaignView(result.Campaign),
		Receipt:  newReceipt(result),
	})
}

type withdrawRequest struct {
	Amount uint64 `json:"amount"`
}

type withdrawResponse struct {
	Campaign campaignView `json:"campaign"`
	Removed  bool         `json:"removed,omitempty"`
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
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
	var req withdrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.funding.Withdraw(r.Context(), campaignID, funding.WithdrawInput{
		Caller: claims.Subject,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{
		Campaign: newCampaignView(result.Campaign),
		Removed:  result.Removed,
	})
}

type deleteCampaignResponse struct {
	Refunded bool `json:"refunded"`
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.funding.Delete(r.Context(), campaignID, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteCampaignResponse{Refunded: result.Refunded})
}

func (h *Handler) handleAdminDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	claims, err := h.admin(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := h.funding.AdminDelete(r.Context(), campaignID, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteCampaignResponse{Refunded: result.Refunded})
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	record, err := h.funding.GetAsset(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssetView(record))
}

func (h *Handler) handleMarkAssetPurchased(w http.ResponseWriter, r *http.Request) {
	claims, err := h.admin(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.funding.MarkAssetPurchased(r.Context(), campaignID, claims.Subject); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := h.funding.GetAsset(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssetView(record))
}

type payoutWalletRequest struct {
	Wallet string `json:"wallet"`
}

func (h *Handler) handleRegisterPayoutWallet(w http.ResponseWriter, r *http.Request) {
	if _, err := h.admin(r); err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req payoutWalletRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.funding.RegisterPayoutWallet(r.Context(), campaignID, req.Wallet); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := h.funding.GetAsset(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssetView(record))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
