package models

// Listing is one resale offer pulled out of a rendered page, before any
// price normalization. It has no identity beyond its fields.
type Listing struct {
	Title     string `json:"title"`
	DateLabel string `json:"date"`
	PriceRaw  string `json:"price"`
	URL       string `json:"url"`
}

// TrackedEvent is a marketplace page under periodic price surveillance.
// The lowest-price fields are a denormalized cache of price_history,
// refreshed after every append.
type TrackedEvent struct {
	ID               int64    `db:"id" json:"id"`
	Name             string   `db:"name" json:"name"`
	URL              string   `db:"url" json:"url"`
	Active           bool     `db:"active" json:"active"`
	CreatedAt        string   `db:"created_at" json:"created_at"`
	LastScrapedAt    *string  `db:"last_scraped_at" json:"last_scraped_at"`
	LowestPriceValue *float64 `db:"lowest_price_value" json:"lowest_price_value"`
	LowestPriceRaw   *string  `db:"lowest_price_raw" json:"lowest_price_raw"`
	LowestCurrency   *string  `db:"lowest_currency" json:"lowest_currency"`
	LowestSeenAt     *string  `db:"lowest_seen_at" json:"lowest_seen_at"`
}

// PriceEntry is one append-only price_history row. Rows are never updated
// or deleted once written.
type PriceEntry struct {
	ID         int64    `db:"id" json:"id"`
	EventID    int64    `db:"event_id" json:"event_id"`
	ScrapedAt  string   `db:"scraped_at" json:"scraped_at"`
	Title      string   `db:"title" json:"title"`
	DateLabel  string   `db:"date_label" json:"date_label"`
	PriceRaw   string   `db:"price_raw" json:"price_raw"`
	PriceValue *float64 `db:"price_value" json:"price_value"`
	Currency   *string  `db:"currency" json:"currency"`
	ListingURL string   `db:"listing_url" json:"listing_url"`
}

// Run statuses. A run starts as running and is finalized exactly once
// into ok or error.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunError   = "error"
)

// ScrapeRun records one tracking cycle for one event.
type ScrapeRun struct {
	ID            int64    `db:"id" json:"id"`
	EventID       int64    `db:"event_id" json:"event_id"`
	StartedAt     string   `db:"started_at" json:"started_at"`
	FinishedAt    *string  `db:"finished_at" json:"finished_at"`
	Status        string   `db:"status" json:"status"`
	Error         *string  `db:"error" json:"error"`
	ItemsFound    int      `db:"items_found" json:"items_found"`
	ItemsSaved    int      `db:"items_saved" json:"items_saved"`
	MinPriceFound *float64 `db:"min_price_found" json:"min_price_found"`
}

// Subscriber receives price-drop alerts, either for one event or for all
// events when EventID is nil.
type Subscriber struct {
	ID        int64  `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	EventID   *int64 `db:"event_id" json:"event_id"`
	Active    bool   `db:"active" json:"active"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// ChartPoint is the minimum observed price at one scrape timestamp.
type ChartPoint struct {
	ScrapedAt string  `db:"scraped_at" json:"scraped_at"`
	MinPrice  float64 `db:"min_price" json:"min_price"`
}

// AlertResult reports the outcome of a price-drop notification. Dispatch
// never fails a run; failures are carried here instead.
type AlertResult struct {
	Sent       bool     `json:"sent"`
	Provider   string   `json:"provider,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

// RunResult is what one tracking cycle returns to its caller.
type RunResult struct {
	EventID       int64        `json:"event_id"`
	Status        string       `json:"status"`
	Error         string       `json:"error,omitempty"`
	ItemsFound    int          `json:"items_found"`
	ItemsSaved    int          `json:"items_saved"`
	MinPriceFound *float64     `json:"min_price_found"`
	Alert         *AlertResult `json:"alert,omitempty"`
}
