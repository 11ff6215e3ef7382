package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qrmlabs/chatbot-api/internal/store"
	"github.com/qrmlabs/chatbot-api/internal/utils"
)

const (
	maxResponseProducts   = 5
	maxResponseCategories = 5
	maxPromptShipping     = 3
	llmAttempts           = 3
	llmCallTimeout        = 45 * time.Second

	apologyText = "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."
)

// ChatRequest is one inbound user turn.
type ChatRequest struct {
	Message        string
	SiteName       string
	ConversationID string
	UserID         string
}

// ProductView is a product plus its customer-facing price rendering.
type ProductView struct {
	store.Product
	PriceDisplay string `json:"price_display"`
}

// ChatResult is the assembled reply a chat widget renders.
type ChatResult struct {
	Response        string           `json:"response"`
	Products        []ProductView    `json:"products"`
	Categories      []string         `json:"categories"`
	ShippingOptions []ShippingOption `json:"shipping_options"`
	ConversationID  string           `json:"conversation_id"`
	Timestamp       time.Time        `json:"timestamp"`
}

// ChatService orchestrates a chat turn: retrieve products, resolve shipping,
// load history, prompt the model, persist both turns.
type ChatService struct {
	dbStore     *store.SQLiteStore
	search      *SearchService
	shipping    *ShippingService
	llm         Completer
	log         zerolog.Logger
	backoffBase time.Duration
}

func NewChatService(db *store.SQLiteStore, search *SearchService, shipping *ShippingService, llm Completer, log zerolog.Logger) *ChatService {
	return &ChatService{
		dbStore:     db,
		search:      search,
		shipping:    shipping,
		llm:         llm,
		log:         log,
		backoffBase: 500 * time.Millisecond,
	}
}

func (s *ChatService) Respond(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	site, err := s.search.ResolveSite(req.SiteName)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("%w: %s", ErrSiteNotFound, req.SiteName)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = newConversationID()
	}

	products, err := s.search.Search(site, req.Message, maxResponseProducts)
	if err != nil {
		s.log.Error().Err(err).Str("site", site.Name).Msg("product search failed, continuing without products")
		products = nil
	}

	var shippingOptions []ShippingOption
	if postcode := utils.ExtractPostcode(req.Message); postcode != "" && len(products) > 0 {
		shippingOptions, err = s.shipping.Options(site, products, postcode)
		if err != nil {
			s.log.Error().Err(err).Str("postcode", postcode).Msg("shipping resolution failed, continuing without options")
			shippingOptions = nil
		}
	}

	history, err := s.dbStore.History(conversationID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("history load failed, continuing without it")
		history = nil
	}

	categories := s.categoryNames(site)
	views := ProductViews(products)

	if err := s.dbStore.Append(conversationID, site.ID, req.UserID, "user", req.Message); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist user turn")
	}

	reply, err := s.completeWithRetry(ctx, buildSystemPrompt(site), history, buildUserPrompt(req.Message, views, shippingOptions))
	if err != nil {
		// The widget always gets something to render: apologize and strip
		// the grounding payload rather than surfacing an error status.
		s.log.Error().Err(err).Str("conversation_id", conversationID).Msg("language model unavailable, returning degraded reply")
		return &ChatResult{
			Response:        apologyText,
			Products:        []ProductView{},
			Categories:      categories,
			ShippingOptions: []ShippingOption{},
			ConversationID:  conversationID,
			Timestamp:       time.Now().UTC(),
		}, nil
	}

	if err := s.dbStore.Append(conversationID, site.ID, req.UserID, "assistant", reply); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist assistant turn")
	}

	return &ChatResult{
		Response:        reply,
		Products:        views,
		Categories:      categories,
		ShippingOptions: shippingOptions,
		ConversationID:  conversationID,
		Timestamp:       time.Now().UTC(),
	}, nil
}

func (s *ChatService) completeWithRetry(ctx context.Context, system string, history []store.ConversationMessage, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < llmAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoffBase << (attempt - 1)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
		reply, err := s.llm.Complete(callCtx, system, history, prompt)
		cancel()
		if err == nil {
			return reply, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("language model call failed")
	}
	return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

func (s *ChatService) categoryNames(site *store.Site) []string {
	categories, err := s.dbStore.CategoriesBySite(site.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("site", site.Name).Msg("category load failed")
		return []string{}
	}
	names := make([]string, 0, maxResponseCategories)
	for _, c := range categories {
		if len(names) == maxResponseCategories {
			break
		}
		names = append(names, c.Name)
	}
	return names
}

// ProductViews attaches the customer-facing price rendering to each product.
func ProductViews(products []store.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, PriceDisplay: PriceDisplay(p)})
	}
	return views
}

func newConversationID() string {
	return "qrm_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func buildSystemPrompt(site *store.Site) string {
	return fmt.Sprintf(`You are a helpful customer service assistant for %s (%s).

Your role:
- Help customers find the right products for their needs
- Provide accurate pricing and product information
- Explain shipping options and costs
- Be friendly, professional, and knowledgeable

Guidelines:
- Always use the provided product context when available
- Include specific product names, SKUs, and prices when relevant
- When a product link is provided, render it as an HTML <a> tag
- If you don't have specific information, say so instead of inventing it
- Keep responses concise and focused on the customer's problem`, site.Name, site.URL)
}

func buildUserPrompt(message string, products []ProductView, shipping []ShippingOption) string {
	var b strings.Builder

	if len(products) > 0 {
		b.WriteString("RELEVANT PRODUCTS:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s (SKU: %s) - %s\n", p.Name, orNA(p.SKU), p.PriceDisplay)
			if p.ShortDescription != "" {
				fmt.Fprintf(&b, "  Description: %s\n", p.ShortDescription)
			}
			fmt.Fprintf(&b, "  Stock: %s\n", orNA(p.StockStatus))
			fmt.Fprintf(&b, "  Link: %s\n", orNA(p.Permalink))
			for _, v := range p.Variations {
				if cost, ok := ParseCost(v.Price, 0); ok {
					fmt.Fprintf(&b, "  Variation (%s): $%.2f\n", v.Attributes.Summary(), cost)
				}
			}
		}
	}

	if len(shipping) > 0 {
		b.WriteString("\nSHIPPING OPTIONS:\n")
		for i, opt := range shipping {
			if i == maxPromptShipping {
				break
			}
			fmt.Fprintf(&b, "- %s: $%.2f\n", opt.Label, opt.Cost)
		}
	}

	if b.Len() == 0 {
		return fmt.Sprintf("Customer question: %s", message)
	}
	return fmt.Sprintf("Context:\n%s\nCustomer question: %s", b.String(), message)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
