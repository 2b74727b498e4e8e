package matching

import "sort"

const (
	// DefaultPageSize is used when a caller does not request a page size.
	DefaultPageSize = 20
	// MaxPageSize bounds response cost regardless of what the caller asks for.
	MaxPageSize = 50
)

// Page is one window of a ranked candidate list. Pages are 1-based.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Rank orders candidates nearest first. Ties break on the verified flag
// (verified first), then on user ID, so the ordering is reproducible
// across requests and pagination never straddles duplicates.
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.User.Verified != b.User.Verified {
			return a.User.Verified
		}
		return a.User.ID < b.User.ID
	})

	return ranked
}

// Paginate returns the 1-based page of the given size. A page past the end
// yields an empty page, never an error. Page size is clamped to MaxPageSize
// and defaults to DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	// Huge page numbers overflow the multiplication; any page past the end
	// is an empty page either way.
	if start < 0 || start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
