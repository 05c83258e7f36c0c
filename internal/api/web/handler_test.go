package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/crowdvault/internal/auth/credential"
	fundingservice "github.com/louisbranch/crowdvault/internal/funding/service"
	governanceservice "github.com/louisbranch/crowdvault/internal/governance/service"
	"github.com/louisbranch/crowdvault/internal/storage/bbolt"
	"github.com/louisbranch/crowdvault/internal/storage/sqlite"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

type apiFixture struct {
	mux    *http.ServeMux
	creds  credential.Config
	ledger *treasury.MemoryLedger
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()

	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "vault.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close sqlite store: %v", err)
		}
	})

	assets, err := bbolt.Open(filepath.Join(dir, "assets.db"))
	if err != nil {
		t.Fatalf("open asset store: %v", err)
	}
	t.Cleanup(func() {
		if err := assets.Close(); err != nil {
			t.Errorf("close asset store: %v", err)
		}
	})

	ledger := treasury.NewMemoryLedger()

	funding, err := fundingservice.New(fundingservice.Config{
		Store:  store,
		Assets: assets,
		Ledger: ledger,
	})
	if err != nil {
		t.Fatalf("new funding service: %v", err)
	}
	governance, err := governanceservice.New(governanceservice.Config{
		Store:  store,
		Assets: assets,
	})
	if err != nil {
		t.Fatalf("new governance service: %v", err)
	}

	creds := credential.Config{
		Issuer:   "crowdvault",
		Audience: "crowdvault-api",
		Key:      bytes.Repeat([]byte{0x42}, 32),
		Now:      time.Now,
	}
	handler, err := NewHandler(funding, governance, creds)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	return apiFixture{mux: handler.Routes(), creds: creds, ledger: ledger}
}

func (f apiFixture) token(t *testing.T, subject string, scopes ...string) string {
	t.Helper()
	token, err := credential.Issue(f.creds, subject, "jwt-"+subject, scopes, time.Hour)
	if err != nil {
		t.Fatalf("issue credential: %v", err)
	}
	return token
}

func (f apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	f.mux.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

// createTestCampaign opens a 500M target campaign as alice over HTTP.
func createTestCampaign(t *testing.T, f apiFixture) string {
	t.Helper()
	f.ledger.Mint("alice", 150_000_000)
	recorder := f.do(t, http.MethodPost, "/v1/campaigns", f.token(t, "alice"), map[string]any{
		"asset_id":         "asset-9",
		"name":             "Vault One",
		"target":           500_000_000,
		"min_contribution": 100_000_000,
		"initial_deposit":  101_000_000,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create campaign status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		Campaign struct {
			ID string `json:"id"`
		} `json:"campaign"`
	}
	decodeResponse(t, recorder, &response)
	if response.Campaign.ID == "" {
		t.Fatal("campaign id missing from response")
	}
	return response.Campaign.ID
}

func TestCreateCampaignEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.ledger.Mint("alice", 150_000_000)

	recorder := f.do(t, http.MethodPost, "/v1/campaigns", f.token(t, "alice"), map[string]any{
		"asset_id":         "asset-9",
		"name":             "Vault One",
		"target":           500_000_000,
		"min_contribution": 100_000_000,
		"initial_deposit":  101_000_000,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Campaign struct {
			Creator string `json:"creator"`
			Pool    uint64 `json:"pool"`
			Status  string `json:"status"`
		} `json:"campaign"`
		Receipt struct {
			Fee uint64 `json:"fee"`
			Net uint64 `json:"net"`
		} `json:"receipt"`
	}
	decodeResponse(t, recorder, &response)
	if response.Campaign.Creator != "alice" {
		t.Fatalf("creator = %q, want token subject alice", response.Campaign.Creator)
	}
	if response.Campaign.Pool != 100_000_000 || response.Receipt.Fee != 1_000_000 {
		t.Fatalf("pool=%d fee=%d", response.Campaign.Pool, response.Receipt.Fee)
	}
}

func TestBearerCredentialRequired(t *testing.T) {
	f := newAPIFixture(t)

	recorder := f.do(t, http.MethodGet, "/v1/campaigns", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	decodeResponse(t, recorder, &body)
	if body.Code != "CREDENTIAL_MISSING" {
		t.Fatalf("error code = %q, want CREDENTIAL_MISSING", body.Code)
	}
}

func TestAdminRoutesRequireScope(t *testing.T) {
	f := newAPIFixture(t)
	campaignID := createTestCampaign(t, f)

	recorder := f.do(t, http.MethodDelete, "/v1/admin/campaigns/"+campaignID, f.token(t, "alice"), nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without admin scope", recorder.Code)
	}

	recorder = f.do(t, http.MethodDelete, "/v1/admin/campaigns/"+campaignID, f.token(t, "ops", credential.ScopeAdmin), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	f := newAPIFixture(t)

	recorder := f.do(t, http.MethodGet, "/v1/campaigns/nosuch", f.token(t, "alice"), nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestGovernanceFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	campaignID := createTestCampaign(t, f)

	// Bob fills the remaining 400M so the campaign completes.
	f.ledger.Mint("bob", 500_000_000)
	recorder := f.do(t, http.MethodPost, "/v1/campaigns/"+campaignID+"/contributions", f.token(t, "bob"), map[string]any{
		"deposit": 404_000_000,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("contribute status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var contributeResp struct {
		Receipt struct {
			Completed bool `json:"completed"`
		} `json:"receipt"`
	}
	decodeResponse(t, recorder, &contributeResp)
	if !contributeResp.Receipt.Completed {
		t.Fatal("contribution should complete the campaign")
	}

	recorder = f.do(t, http.MethodPost, "/v1/admin/campaigns/"+campaignID+"/asset/purchase", f.token(t, "ops", credential.ScopeAdmin), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("purchase status = %d body = %s", recorder.Code, recorder.Body.String())
	}

	recorder = f.do(t, http.MethodPost, "/v1/campaigns/"+campaignID+"/proposals", f.token(t, "alice"), map[string]any{
		"type":       "list",
		"list_price": 2_000_000_000,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("proposal status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var proposalResp struct {
		Proposal struct {
			ID string `json:"id"`
		} `json:"proposal"`
	}
	decodeResponse(t, recorder, &proposalResp)

	recorder = f.do(t, http.MethodPost, "/v1/proposals/"+proposalResp.Proposal.ID+"/votes", f.token(t, "bob"), map[string]any{
		"choice": "approve",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("vote status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var voteResp struct {
		Outcome string `json:"outcome"`
	}
	decodeResponse(t, recorder, &voteResp)
	if voteResp.Outcome != "passed" {
		t.Fatalf("outcome = %q, want passed", voteResp.Outcome)
	}

	recorder = f.do(t, http.MethodGet, "/v1/campaigns/"+campaignID+"/asset", f.token(t, "alice"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("asset status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var assetResp struct {
		Listed    bool   `json:"listed"`
		ListPrice uint64 `json:"list_price"`
	}
	decodeResponse(t, recorder, &assetResp)
	if !assetResp.Listed || assetResp.ListPrice != 2_000_000_000 {
		t.Fatalf("asset listed=%v price=%d", assetResp.Listed, assetResp.ListPrice)
	}
}

func TestListEventsWithFilter(t *testing.T) {
	f := newAPIFixture(t)
	campaignID := createTestCampaign(t, f)

	f.ledger.Mint("bob", 300_000_000)
	recorder := f.do(t, http.MethodPost, "/v1/campaigns/"+campaignID+"/contributions", f.token(t, "bob"), map[string]any{
		"deposit": 202_000_000,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("contribute status = %d", recorder.Code)
	}

	path := fmt.Sprintf("/v1/campaigns/%s/events?filter=%s", campaignID, "actor_id+%3D+%22bob%22")
	recorder = f.do(t, http.MethodGet, path, f.token(t, "alice"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list events status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		Events []struct {
			Type    string `json:"type"`
			ActorID string `json:"actor_id"`
		} `json:"events"`
		TotalCount int `json:"total_count"`
	}
	decodeResponse(t, recorder, &response)
	if response.TotalCount != 1 || len(response.Events) != 1 {
		t.Fatalf("total=%d events=%d, want 1 bob event", response.TotalCount, len(response.Events))
	}
	if response.Events[0].ActorID != "bob" || response.Events[0].Type != "campaign.contributed" {
		t.Fatalf("event = %+v", response.Events[0])
	}
}

func TestListEventsPagination(t *testing.T) {
	f := newAPIFixture(t)
	campaignID := createTestCampaign(t, f)

	f.ledger.Mint("bob", 500_000_000)
	for i := 0; i < 2; i++ {
		recorder := f.do(t, http.MethodPost, "/v1/campaigns/"+campaignID+"/contributions", f.token(t, "bob"), map[string]any{
			"deposit": 101_000_000,
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("contribute status = %d", recorder.Code)
		}
	}

	recorder := f.do(t, http.MethodGet, "/v1/campaigns/"+campaignID+"/events?page_size=2", f.token(t, "alice"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list events status = %d", recorder.Code)
	}
	var firstPage struct {
		Events []struct {
			Seq uint64 `json:"seq"`
		} `json:"events"`
		NextPageToken string `json:"next_page_token"`
		TotalCount    int    `json:"total_count"`
	}
	decodeResponse(t, recorder, &firstPage)
	if len(firstPage.Events) != 2 || firstPage.TotalCount != 3 {
		t.Fatalf("first page events=%d total=%d", len(firstPage.Events), firstPage.TotalCount)
	}
	if firstPage.NextPageToken == "" {
		t.Fatal("expected a next page token")
	}

	recorder = f.do(t, http.MethodGet, "/v1/campaigns/"+campaignID+"/events?page_size=2&page_token="+firstPage.NextPageToken, f.token(t, "alice"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("second page status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var secondPage struct {
		Events []struct {
			Seq uint64 `json:"seq"`
		} `json:"events"`
		PrevPageToken string `json:"prev_page_token"`
	}
	decodeResponse(t, recorder, &secondPage)
	if len(secondPage.Events) != 1 || secondPage.Events[0].Seq != 3 {
		t.Fatalf("second page = %+v, want seq 3", secondPage.Events)
	}
	if secondPage.PrevPageToken == "" {
		t.Fatal("expected a prev page token")
	}
}
