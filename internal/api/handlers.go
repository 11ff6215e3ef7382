package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qrmlabs/chatbot-api/internal/core"
	"github.com/qrmlabs/chatbot-api/internal/store"
)

const maxMessageLength = 2000

// ChatProvider runs one orchestrated chat turn.
type ChatProvider interface {
	Respond(ctx context.Context, req core.ChatRequest) (*core.ChatResult, error)
}

// SearchProvider resolves sites and ranks catalog rows against a query.
type SearchProvider interface {
	ResolveSite(name string) (*store.Site, error)
	Search(site *store.Site, query string, limit int) ([]store.Product, error)
}

// ShippingProvider quotes shipping for matched products.
type ShippingProvider interface {
	Options(site *store.Site, products []store.Product, postcode string) ([]core.ShippingOption, error)
}

// Storage is the slice of the store the handlers read directly.
type Storage interface {
	ListSites() ([]store.Site, error)
	GetSiteStats(site *store.Site) (*store.SiteStats, error)
	GetProductsByIDs(siteID int64, ids []int64) ([]store.Product, error)
	HistoryEnabled() bool
	Ping() error
}

type APIHandler struct {
	chat          ChatProvider
	search        SearchProvider
	shipping      ShippingProvider
	storage       Storage
	llmConfigured bool
	log           zerolog.Logger
}

func NewAPIHandler(chat ChatProvider, search SearchProvider, shipping ShippingProvider, storage Storage, llmConfigured bool, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		chat:          chat,
		search:        search,
		shipping:      shipping,
		storage:       storage,
		llmConfigured: llmConfigured,
		log:           log,
	}
}

type ChatRequestBody struct {
	Message        string `json:"message"`
	SiteName       string `json:"site_name"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" || req.SiteName == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: message, site_name")
		return
	}
	if len(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message exceeds maximum length")
		return
	}

	result, err := h.chat.Respond(r.Context(), core.ChatRequest{
		Message:        req.Message,
		SiteName:       req.SiteName,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
	})
	if err != nil {
		if errors.Is(err, core.ErrSiteNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("chat request failed")
		writeError(w, http.StatusServiceUnavailable, "failed to process chat message")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type ProductSearchRequestBody struct {
	Query    string `json:"query"`
	SiteName string `json:"site_name"`
	Limit    int    `json:"limit,omitempty"`
}

type ProductSearchResponseBody struct {
	Products []core.ProductView `json:"products"`
	Count    int                `json:"count"`
	Query    string             `json:"query"`
}

func (h *APIHandler) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductSearchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" || req.SiteName == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: query, site_name")
		return
	}

	site, err := h.search.ResolveSite(req.SiteName)
	if err != nil {
		h.log.Error().Err(err).Msg("site resolution failed")
		writeError(w, http.StatusServiceUnavailable, "failed to search products")
		return
	}
	if site == nil {
		writeError(w, http.StatusNotFound, "site not found: "+req.SiteName)
		return
	}

	products, err := h.search.Search(site, req.Query, req.Limit)
	if err != nil {
		h.log.Error().Err(err).Str("query", req.Query).Msg("product search failed")
		writeError(w, http.StatusServiceUnavailable, "failed to search products")
		return
	}

	views := core.ProductViews(products)
	writeJSON(w, http.StatusOK, ProductSearchResponseBody{
		Products: views,
		Count:    len(views),
		Query:    req.Query,
	})
}

type ShippingCalculateRequestBody struct {
	SiteName   string  `json:"site_name"`
	ProductIDs []int64 `json:"product_ids"`
	Postcode   string  `json:"postcode"`
}

type ShippingCalculateResponseBody struct {
	Postcode        string                `json:"postcode"`
	ShippingOptions []core.ShippingOption `json:"shipping_options"`
	ProductIDs      []int64               `json:"product_ids"`
}

func (h *APIHandler) CalculateShippingHandler(w http.ResponseWriter, r *http.Request) {
	var req ShippingCalculateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SiteName == "" || len(req.ProductIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing required fields: site_name, product_ids")
		return
	}

	site, err := h.search.ResolveSite(req.SiteName)
	if err != nil {
		h.log.Error().Err(err).Msg("site resolution failed")
		writeError(w, http.StatusServiceUnavailable, "failed to calculate shipping")
		return
	}
	if site == nil {
		writeError(w, http.StatusNotFound, "site not found: "+req.SiteName)
		return
	}

	products, err := h.storage.GetProductsByIDs(site.ID, req.ProductIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("product load failed")
		writeError(w, http.StatusServiceUnavailable, "failed to calculate shipping")
		return
	}

	options, err := h.shipping.Options(site, products, req.Postcode)
	if err != nil {
		h.log.Error().Err(err).Str("postcode", req.Postcode).Msg("shipping resolution failed")
		writeError(w, http.StatusServiceUnavailable, "failed to calculate shipping")
		return
	}
	if options == nil {
		options = []core.ShippingOption{}
	}

	writeJSON(w, http.StatusOK, ShippingCalculateResponseBody{
		Postcode:        req.Postcode,
		ShippingOptions: options,
		ProductIDs:      req.ProductIDs,
	})
}

func (h *APIHandler) ListSitesHandler(w http.ResponseWriter, r *http.Request) {
	sites, err := h.storage.ListSites()
	if err != nil {
		h.log.Error().Err(err).Msg("site listing failed")
		writeError(w, http.StatusServiceUnavailable, "failed to list sites")
		return
	}
	if sites == nil {
		sites = []store.Site{}
	}
	writeJSON(w, http.StatusOK, sites)
}

func (h *APIHandler) SiteStatsHandler(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")

	site, err := h.search.ResolveSite(siteName)
	if err != nil {
		h.log.Error().Err(err).Msg("site resolution failed")
		writeError(w, http.StatusServiceUnavailable, "failed to load site stats")
		return
	}
	if site == nil {
		writeError(w, http.StatusNotFound, "site not found: "+siteName)
		return
	}

	stats, err := h.storage.GetSiteStats(site)
	if err != nil {
		h.log.Error().Err(err).Msg("site stats failed")
		writeError(w, http.StatusServiceUnavailable, "failed to load site stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type HealthResponseBody struct {
	Status              string    `json:"status"`
	DatabaseConnected   bool      `json:"database_connected"`
	LLMConfigured       bool      `json:"llm_configured"`
	ConversationHistory bool      `json:"conversation_history"`
	Timestamp           time.Time `json:"timestamp"`
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponseBody{
		Status:              "healthy",
		DatabaseConnected:   true,
		LLMConfigured:       h.llmConfigured,
		ConversationHistory: h.storage.HistoryEnabled(),
		Timestamp:           time.Now().UTC(),
	}

	status := http.StatusOK
	if err := h.storage.Ping(); err != nil {
		resp.DatabaseConnected = false
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if !h.llmConfigured {
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
