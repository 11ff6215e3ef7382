package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qrmlabs/chatbot-api/internal/cache"
	"github.com/qrmlabs/chatbot-api/internal/store"
	"github.com/qrmlabs/chatbot-api/internal/utils"
)

// Field weights for the relevance score. Name matches dominate so that a
// query naming a product outranks incidental description hits.
const (
	nameWeight      = 3
	shortDescWeight = 2
	bodyWeight      = 1

	siteCacheTTL = 5 * time.Minute
)

type SearchService struct {
	dbStore       *store.SQLiteStore
	siteCache     *cache.Cache
	defaultTopics []string
	log           zerolog.Logger
}

func NewSearchService(db *store.SQLiteStore, defaultTopics []string, log zerolog.Logger) *SearchService {
	return &SearchService{
		dbStore:       db,
		siteCache:     cache.New(siteCacheTTL),
		defaultTopics: defaultTopics,
		log:           log,
	}
}

// ResolveSite looks a site up by name through a short-lived cache. A nil
// result with nil error means the site does not exist.
func (s *SearchService) ResolveSite(name string) (*store.Site, error) {
	if cached, found := s.siteCache.Get(name); found {
		return cached.(*store.Site), nil
	}

	site, err := s.dbStore.GetSiteByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site %q: %w", name, err)
	}
	if site != nil {
		s.siteCache.Set(name, site)
	}
	return site, nil
}

type scoredProduct struct {
	product store.Product
	score   int
}

// Search ranks a site's catalog against the query by weighted word matching
// and returns at most limit products, variations loaded. A query with no
// scoring words is retried once against the configured default topics before
// giving up.
func (s *SearchService) Search(site *store.Site, query string, limit int) ([]store.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	words := utils.Tokenize(query)
	ranked, err := s.rank(site.ID, words, limit)
	if err != nil {
		return nil, err
	}

	if len(ranked) == 0 && len(s.defaultTopics) > 0 {
		s.log.Debug().Str("site", site.Name).Str("query", query).Msg("no relevance hits, falling back to default topics")
		ranked, err = s.rank(site.ID, s.defaultTopics, limit)
		if err != nil {
			return nil, err
		}
	}

	if len(ranked) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(ranked))
	for i, sc := range ranked {
		ids[i] = sc.product.ID
	}
	return s.dbStore.GetProductsByIDs(site.ID, ids)
}

func (s *SearchService) rank(siteID int64, words []string, limit int) ([]scoredProduct, error) {
	if len(words) == 0 {
		return nil, nil
	}

	rows, err := s.dbStore.ProductsForScoring(siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for scoring: %w", err)
	}

	scored := make([]scoredProduct, 0, len(rows))
	for _, p := range rows {
		if score := scoreProduct(p, words); score > 0 {
			scored = append(scored, scoredProduct{product: p, score: score})
		}
	}

	// Descending score, ascending id on ties so results are deterministic.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].product.ID < scored[j].product.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func scoreProduct(p store.Product, words []string) int {
	name := strings.ToLower(p.Name)
	shortDesc := strings.ToLower(p.ShortDescription)
	body := strings.ToLower(p.Description + " " + p.SKU + " " + p.ShippingClass)

	score := 0
	for _, word := range words {
		if strings.Contains(name, word) {
			score += nameWeight
		}
		if strings.Contains(shortDesc, word) {
			score += shortDescWeight
		}
		if strings.Contains(body, word) {
			score += bodyWeight
		}
	}
	return score
}
