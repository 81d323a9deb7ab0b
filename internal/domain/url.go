package domain

import "time"

// URL is the persisted mapping between a short code and its target.
// Codes are never recycled: a deactivated row keeps its code forever,
// so a new mapping can never resurrect an old destination.
type URL struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Visits      int64     `json:"visits"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

type CreateURLRequest struct {
	OriginalURL string `json:"url" validate:"required,url"`
	CustomCode  string `json:"custom_code,omitempty" validate:"omitempty,min=4,max=20,shortcode"`
}

type URLStats struct {
	URLs        []URL `json:"urls"`
	TotalURLs   int64 `json:"total_urls"`
	TotalVisits int64 `json:"total_visits"`
}
