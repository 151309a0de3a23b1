package http

import (
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
)

// CategoryOption is one entry of the category picker.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	out := make([]CategoryOption, len(cats))
	for i, c := range cats {
		out[i] = CategoryOption{Value: c.String(), Label: c.String()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	criteria, surfaces, err := ParseViewQuery(r.URL.Query())
	if err != nil {
		log.FromContext(ctx).DebugContext(ctx, "Bad view query", log.FieldQuery, r.URL.RawQuery, log.FieldError, err)
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.View(ctx, criteria, surfaces))
}

// SyncStatusResponse reports the sync indicator.
type SyncStatusResponse struct {
	Enabled bool   `json:"enabled"`
	State   string `json:"state"`
	Text    string `json:"text"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	st := s.ledger.SyncStatus()
	writeJSON(w, http.StatusOK, SyncStatusResponse{
		Enabled: s.ledger.SyncEnabled(),
		State:   string(st.State),
		Text:    st.Text,
	})
}
