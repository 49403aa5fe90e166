// Package catalog holds the product-review domain model, the mapping from the
// API's wire shapes to it, and a client for the review API.
package catalog

// Product is a catalog entry with its review aggregates.
type Product struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Categories      []string    `json:"categories"`
	Price           float64     `json:"price"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	AverageRating   float64     `json:"averageRating"`
	ReviewCount     int         `json:"reviewCount"`
	RatingBreakdown map[int]int `json:"ratingBreakdown"`
	AISummary       string      `json:"aiSummary"`
}

type Review struct {
	ID           int64  `json:"id"`
	ProductID    string `json:"productId"`
	UserName     string `json:"userName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	CreatedAt    string `json:"createdAt"`
	HelpfulCount int    `json:"helpfulCount"`
}

// NewReview is what a user submits.
type NewReview struct {
	ProductID    string `json:"productId"`
	ReviewerName string `json:"reviewerName,omitempty"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	CreatedAt string `json:"createdAt"`
	Read      bool   `json:"read"`
}

type WishlistItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Price     float64 `json:"price"`
	AddedAt   string  `json:"addedAt"`
}

// Page is one page of a paged listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	IsLast        bool  `json:"isLast"`
}
