package extract

// selectorMode describes how the nodes matched by a cascade candidate are
// turned into listings.
type selectorMode int

const (
	// modeAggregate treats the single matched container as holding many
	// listings concatenated; every distinct amount in its text becomes
	// one listing.
	modeAggregate selectorMode = iota
	// modeRowsCurrency keeps listing rows only when their text mentions
	// a currency marker.
	modeRowsCurrency
	// modeRows takes listing rows as matched, unfiltered.
	modeRows
	// modeCards handles the known event-card markup.
	modeCards
	// modeGenericCurrency is the last resort: generic article/list-item
	// nodes, currency-filtered.
	modeGenericCurrency
)

type candidate struct {
	selector string
	mode     selectorMode
}

// listingCascade is tried in order; the first candidate with a non-zero
// match count wins and later candidates are never consulted.
var listingCascade = []candidate{
	{"div[data-testid='listings-container']", modeAggregate},
	{"div[data-testid='listing-row']", modeRowsCurrency},
	{"li[data-testid='listing-row']", modeRowsCurrency},
	{"div[class*='listing-row']", modeRowsCurrency},
	{"div[data-testid='listing-row']", modeRows},
	{"li[data-testid='listing-row']", modeRows},
	{"a[data-testid='event-link']", modeCards},
	{"div[data-testid='event-card']", modeCards},
	{"article", modeGenericCurrency},
	{"li[class*='ticket']", modeGenericCurrency},
}

// consentSelectors are tried against the main document first, then each
// embedded frame, until one visible button is clicked.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"button[id*='accept']",
	"button[id*='consent']",
	"button[class*='consent']",
	"button[aria-label*='accept' i]",
	"button[mode='primary']",
}

// showMoreSelectors expand truncated listing lists after scrolling.
var showMoreSelectors = []string{
	"button[data-testid='show-more']",
	"button[class*='show-more']",
	"button[class*='load-more']",
	"a[class*='show-more']",
}
