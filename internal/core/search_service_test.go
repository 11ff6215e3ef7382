package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrmlabs/chatbot-api/internal/utils"
)

func TestSearchRanksNameMatchesFirst(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")

	seedProduct(t, db, siteID, productSeed{woo: 1, name: "Mass Loaded Vinyl (MLV) Acoustic Barrier",
		shortDesc: "Soundproofing barrier", desc: "Heavy vinyl sheet", sku: "MLV-4KG", class: "bulky"})
	seedProduct(t, db, siteID, productSeed{woo: 2, name: "Acoustic Sealant",
		shortDesc: "Seals gaps", desc: "Use with mass loaded vinyl installs", sku: "SEAL-01"})
	seedProduct(t, db, siteID, productSeed{woo: 3, name: "Garden Hose",
		shortDesc: "20m hose", desc: "Nothing acoustic about it", sku: "HOSE-20"})

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)
	require.NotNil(t, site)

	products, err := svc.Search(site, "mass loaded vinyl", 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Name hits outrank description-only hits.
	assert.Equal(t, "Mass Loaded Vinyl (MLV) Acoustic Barrier", products[0].Name)
	assert.Equal(t, "Acoustic Sealant", products[1].Name)
}

func TestSearchResultsContainAQueryWord(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	seedProduct(t, db, siteID, productSeed{woo: 1, name: "Mass Loaded Vinyl", sku: "MLV-1"})
	seedProduct(t, db, siteID, productSeed{woo: 2, name: "Green Glue", sku: "GG-1"})

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	words := utils.Tokenize("vinyl price")
	products, err := svc.Search(site, "vinyl price", 10)
	require.NoError(t, err)

	for _, p := range products {
		assert.Positive(t, scoreProduct(p, words), "product %q returned without a scoring word", p.Name)
	}
}

func TestSearchTiebreakIsDeterministic(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	first := seedProduct(t, db, siteID, productSeed{woo: 10, name: "Acoustic Panel A"})
	seedProduct(t, db, siteID, productSeed{woo: 11, name: "Acoustic Panel B"})

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		products, err := svc.Search(site, "acoustic panel", 10)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, first, products[0].ID)
	}
}

func TestSearchCapsResults(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	for i := 0; i < 8; i++ {
		seedProduct(t, db, siteID, productSeed{woo: int64(i), name: "Acoustic Foam Tile"})
	}

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	products, err := svc.Search(site, "acoustic foam", 3)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestSearchFallsBackToDefaultTopics(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	seedProduct(t, db, siteID, productSeed{woo: 1, name: "Mass Loaded Vinyl", shortDesc: "Soundproofing barrier"})

	svc := NewSearchService(dbStore, []string{"soundproofing"}, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	// No word of the query matches anything; the default topic should.
	products, err := svc.Search(site, "xylophone zebra", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mass Loaded Vinyl", products[0].Name)
}

func TestSearchNoMatchesAtAll(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	seedProduct(t, db, siteID, productSeed{woo: 1, name: "Mass Loaded Vinyl"})

	svc := NewSearchService(dbStore, []string{"plumbing"}, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	products, err := svc.Search(site, "xylophone zebra", 10)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestResolveSiteUnknown(t *testing.T) {
	dbStore, _ := newTestStore(t)

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("nope")
	require.NoError(t, err)
	assert.Nil(t, site)
}

func TestSearchLoadsVariations(t *testing.T) {
	dbStore, db := newTestStore(t)
	siteID := seedSite(t, db, "store1")
	productID := seedProduct(t, db, siteID, productSeed{woo: 1, name: "Mass Loaded Vinyl", price: "300.00"})
	seedVariation(t, db, productID, "MLV-4KG-ROLL", "209.21", `[{"name":"Weight","option":"4kg Full Roll"}]`)

	svc := NewSearchService(dbStore, nil, zerolog.Nop())
	site, err := svc.ResolveSite("store1")
	require.NoError(t, err)

	products, err := svc.Search(site, "vinyl", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Len(t, products[0].Variations, 1)
	assert.Equal(t, "209.21", products[0].Variations[0].Price)
	assert.Equal(t, "Weight: 4kg Full Roll", products[0].Variations[0].Attributes.Summary())
}
