package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/louisbranch/crowdvault/internal/event"
	"github.com/louisbranch/crowdvault/internal/storage"
	"github.com/louisbranch/crowdvault/internal/storage/cursor"
	"github.com/louisbranch/crowdvault/internal/storage/filter"
)

type eventView struct {
	CampaignID string          `json:"campaign_id"`
	Seq        uint64          `json:"seq"`
	Hash       string          `json:"hash"`
	Timestamp  time.Time       `json:"timestamp"`
	Type       string          `json:"type"`
	ActorType  string          `json:"actor_type"`
	ActorID    string          `json:"actor_id,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func newEventView(evt event.Event) eventView {
	return eventView{
		CampaignID: evt.CampaignID,
		Seq:        evt.Seq,
		Hash:       evt.Hash,
		Timestamp:  evt.Timestamp,
		Type:       string(evt.Type),
		ActorType:  string(evt.ActorType),
		ActorID:    evt.ActorID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Payload:    json.RawMessage(evt.PayloadJSON),
	}
}

type listEventsResponse struct {
	Events        []eventView `json:"events"`
	NextPageToken string      `json:"next_page_token,omitempty"`
	PrevPageToken string      `json:"prev_page_token,omitempty"`
	TotalCount    int         `json:"total_count"`
}

// handleListEvents serves the campaign journal with AIP-160 filtering
// and opaque cursor pagination.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := h.caller(r); err != nil {
		writeError(w, r, err)
		return
	}
	campaignID, err := pathID(r, "campaignID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	query := r.URL.Query()
	filterStr := query.Get("filter")
	descending := query.Get("order") == "desc"

	condition, err := filter.ParseEventFilter(filterStr)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	req := storage.ListEventsPageRequest{
		CampaignID:   campaignID,
		PageSize:     queryInt(r, "page_size", 0),
		Descending:   descending,
		FilterClause: condition.Clause,
		FilterParams: condition.Params,
	}

	if token := query.Get("page_token"); token != "" {
		decoded, err := cursor.Decode(token)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if err := cursor.ValidateFilterHash(decoded, filterStr); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		req.CursorSeq = decoded.Seq
		req.CursorDir = string(decoded.Dir)
		req.CursorReverse = decoded.Reverse
	}

	result, err := h.funding.ListEventsPage(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := listEventsResponse{
		Events:     make([]eventView, 0, len(result.Events)),
		TotalCount: result.TotalCount,
	}
	for _, evt := range result.Events {
		response.Events = append(response.Events, newEventView(evt))
	}

	if len(result.Events) > 0 {
		if result.HasNextPage {
			last := result.Events[len(result.Events)-1]
			token, err := cursor.Encode(cursor.NewNextPageCursor(last.Seq, descending, filterStr))
			if err != nil {
				writeError(w, r, err)
				return
			}
			response.NextPageToken = token
		}
		if result.HasPrevPage {
			first := result.Events[0]
			token, err := cursor.Encode(cursor.NewPrevPageCursor(first.Seq, descending, filterStr))
			if err != nil {
				writeError(w, r, err)
				return
			}
			response.PrevPageToken = token
		}
	}

	writeJSON(w, http.StatusOK, response)
}
