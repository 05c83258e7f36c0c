// Package web exposes the vault over HTTP: JSON entry points for
// campaigns, proposals, the asset registry, and the event journal.
// Caller identity comes from the bearer credential subject.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/crowdvault/internal/auth/credential"
	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	fundingservice "github.com/louisbranch/crowdvault/internal/funding/service"
	governanceservice "github.com/louisbranch/crowdvault/internal/governance/service"
)

// Handler serves the vault JSON API.
type Handler struct {
	funding    *fundingservice.Service
	governance *governanceservice.Service
	creds      credential.Config
}

// NewHandler validates dependencies and builds the API handler.
func NewHandler(funding *fundingservice.Service, governance *governanceservice.Service, creds credential.Config) (*Handler, error) {
	if funding == nil {
		return nil, fmt.Errorf("funding service is required")
	}
	if governance == nil {
		return nil, fmt.Errorf("governance service is required")
	}
	if creds.Issuer == "" || creds.Audience == "" || len(creds.Key) == 0 {
		return nil, fmt.Errorf("credential config is required")
	}
	return &Handler{funding: funding, governance: governance, creds: creds}, nil
}

// Routes returns the API mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc(http.MethodPost+" /v1/campaigns", h.handleCreateCampaign)
	mux.HandleFunc(http.MethodGet+" /v1/campaigns", h.handleListCampaigns)
	mux.HandleFunc(http.MethodGet+" /v1/campaigns/{campaignID}", h.handleGetCampaign)
	mux.HandleFunc(http.MethodDelete+" /v1/campaigns/{campaignID}", h.handleDeleteCampaign)
	mux.HandleFunc(http.MethodPost+" /v1/campaigns/{campaignID}/contributions", h.handleContribute)
	mux.HandleFunc(http.MethodPost+" /v1/campaigns/{campaignID}/withdrawals", h.handleWithdraw)
	mux.HandleFunc(http.MethodGet+" /v1/campaigns/{campaignID}/asset", h.handleGetAsset)
	mux.HandleFunc(http.MethodGet+" /v1/campaigns/{campaignID}/events", h.handleListEvents)

	mux.HandleFunc(http.MethodPost+" /v1/campaigns/{campaignID}/proposals", h.handleCreateProposal)
	mux.HandleFunc(http.MethodGet+" /v1/campaigns/{campaignID}/proposals", h.handleListProposals)
	mux.HandleFunc(http.MethodGet+" /v1/proposals/{proposalID}", h.handleGetProposal)
	mux.HandleFunc(http.MethodDelete+" /v1/proposals/{proposalID}", h.handleDeleteProposal)
	mux.HandleFunc(http.MethodPost+" /v1/proposals/{proposalID}/votes", h.handleVote)

	mux.HandleFunc(http.MethodDelete+" /v1/admin/campaigns/{campaignID}", h.handleAdminDeleteCampaign)
	mux.HandleFunc(http.MethodPost+" /v1/admin/campaigns/{campaignID}/asset/purchase", h.handleMarkAssetPurchased)
	mux.HandleFunc(http.MethodPost+" /v1/admin/campaigns/{campaignID}/asset/payout-wallet", h.handleRegisterPayoutWallet)

	return mux
}

// caller authenticates the request and returns the verified claims.
func (h *Handler) caller(r *http.Request) (credential.Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return credential.Claims{}, apperrors.New(apperrors.CodeCredentialMissing, "bearer credential is required")
	}
	return credential.Verify(strings.TrimSpace(token), h.creds)
}

// admin authenticates the request and requires the vault.admin scope.
func (h *Handler) admin(r *http.Request) (credential.Claims, error) {
	claims, err := h.caller(r)
	if err != nil {
		return credential.Claims{}, err
	}
	if !claims.HasScope(credential.ScopeAdmin) {
		return credential.Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential lacks the admin scope")
	}
	return claims, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := requestLocale(r)
	code, message := apperrors.UserMessage(err, locale)
	writeJSON(w, code.HTTPStatus(), errorBody{
		Code:    string(code),
		Message: message,
	})
}

// requestLocale picks the first language tag from Accept-Language.
func requestLocale(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Code:    string(apperrors.CodeUnknown),
		Message: message,
	})
}

func decodeBody(r *http.Request, into any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", errors.New(name + " is required")
	}
	return value, nil
}
