package journal

import "strings"

// Sort values accepted by the list operation. Anything other than "older"
// sorts newest-first, matching the original API contract.
const (
	SortOlder = "older"
	SortNewer = "newer"
)

// PlaceholderImage is stored whenever a memory is written without an image.
const PlaceholderImage = "/cactus.jpg"

// DefaultPageLimit is the page size used when the caller does not choose one.
const DefaultPageLimit = 5

// Memory is a single journal entry. Timestamp is an ISO date string and is
// the sole sort key for listing.
type Memory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	Image       string `json:"image"`
}

// Validate reports ErrInvalid when any required field is blank.
func (m Memory) Validate() error {
	if strings.TrimSpace(m.Name) == "" ||
		strings.TrimSpace(m.Description) == "" ||
		strings.TrimSpace(m.Timestamp) == "" {
		return ErrInvalid
	}
	return nil
}

func (m Memory) imageOrPlaceholder() string {
	if strings.TrimSpace(m.Image) == "" {
		return PlaceholderImage
	}
	return m.Image
}

// User is the singleton profile row. The deployment has exactly one user,
// seeded on first boot and updated in place.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListParams selects one page of memories. Page is 1-based.
type ListParams struct {
	Page  int
	Limit int
	Sort  string
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Ascending reports whether the page is ordered oldest-first.
func (p ListParams) Ascending() bool {
	return p.Sort == SortOlder
}

// MemoryPage is one page of the paginated listing. HasMore is true iff
// offset + len(Memories) < Total.
type MemoryPage struct {
	Memories []Memory `json:"memories"`
	Total    int      `json:"total"`
	HasMore  bool     `json:"hasMore"`
}
