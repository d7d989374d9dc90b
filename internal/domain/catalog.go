package domain

// Catalog status values accepted by validation and stored verbatim.
const (
	CatalogStatusActive   = "active"
	CatalogStatusInactive = "inactive"
)

// Catalog represents a named, dated, status-tagged record owned by a user.
// Dates are kept as validated `YYYY-MM-DD` strings; the store never sees
// anything else.
type Catalog struct {
	ID          int64  `json:"catalog_id"`  // Unique identifier, assigned by the store
	Name        string `json:"name"`        // 1-30 chars, restricted charset
	Description string `json:"description"` // 1-50 chars, restricted charset
	StartDate   string `json:"start_date"`  // ISO 8601 calendar date
	EndDate     string `json:"end_date"`    // ISO 8601 calendar date, >= StartDate
	Status      string `json:"status"`      // "active" or "inactive"
	UserID      int64  `json:"user_id"`     // Owning user, set at creation, never changed
}
