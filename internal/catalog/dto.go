package catalog

import (
	"time"

	"reviewapp/pkg/platform/strings"
)

// Clock supplies the time used for generated review ids.
type Clock func() time.Time

// DefaultUserName is shown for reviews submitted without a name.
const DefaultUserName = "Anonymous"

// ProductDTO is the product shape returned by the API. Pointer fields are
// optional on the wire.
type ProductDTO struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Categories      []string    `json:"categories"`
	Price           float64     `json:"price"`
	ImageURL        *string     `json:"imageUrl"`
	AverageRating   *float64    `json:"averageRating"`
	ReviewCount     *int        `json:"reviewCount"`
	RatingBreakdown map[int]int `json:"ratingBreakdown"`
	AISummary       *string     `json:"aiSummary"`
}

// ToDomain fills every absent optional field with its default: rating 0.0,
// review count 0, an empty breakdown and an empty summary. Categories are
// trimmed and deduplicated.
func (d ProductDTO) ToDomain() Product {
	p := Product{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Categories:      strings.Labels(d.Categories),
		Price:           d.Price,
		ImageURL:        deref(d.ImageURL, ""),
		AverageRating:   deref(d.AverageRating, 0.0),
		ReviewCount:     deref(d.ReviewCount, 0),
		RatingBreakdown: d.RatingBreakdown,
		AISummary:       deref(d.AISummary, ""),
	}
	if p.RatingBreakdown == nil {
		p.RatingBreakdown = map[int]int{}
	}
	return p
}

// ReviewDTO is the review shape returned by the API.
type ReviewDTO struct {
	ID           *int64  `json:"id"`
	ProductID    string  `json:"productId"`
	ReviewerName *string `json:"reviewerName"`
	Rating       int     `json:"rating"`
	Comment      string  `json:"comment"`
	CreatedAt    *string `json:"createdAt"`
	HelpfulCount *int    `json:"helpfulCount"`
}

// ToDomain fills absent fields: userName "Anonymous", createdAt "",
// helpfulCount 0, and an id taken from clock in Unix milliseconds.
func (d ReviewDTO) ToDomain(clock Clock) Review {
	r := Review{
		ProductID:    d.ProductID,
		UserName:     strings.FirstNonBlank(DefaultUserName, deref(d.ReviewerName, "")),
		Rating:       d.Rating,
		Comment:      d.Comment,
		CreatedAt:    deref(d.CreatedAt, ""),
		HelpfulCount: deref(d.HelpfulCount, 0),
	}
	if d.ID != nil {
		r.ID = *d.ID
	} else {
		if clock == nil {
			clock = time.Now
		}
		r.ID = clock().UnixMilli()
	}
	return r
}

// NotificationDTO is the notification shape returned by the API.
type NotificationDTO struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	ProductID *string `json:"productId"`
	CreatedAt *string `json:"createdAt"`
	Read      *bool   `json:"read"`
}

// ToDomain treats a notification without a read flag as unread.
func (d NotificationDTO) ToDomain() Notification {
	return Notification{
		ID:        d.ID,
		Title:     d.Title,
		Message:   d.Message,
		ProductID: deref(d.ProductID, ""),
		CreatedAt: deref(d.CreatedAt, ""),
		Read:      deref(d.Read, false),
	}
}

type WishlistItemDTO struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	ImageURL  *string  `json:"imageUrl"`
	Price     *float64 `json:"price"`
	AddedAt   *string  `json:"addedAt"`
}

func (d WishlistItemDTO) ToDomain() WishlistItem {
	return WishlistItem{
		ProductID: d.ProductID,
		Name:      d.Name,
		ImageURL:  deref(d.ImageURL, ""),
		Price:     deref(d.Price, 0.0),
		AddedAt:   deref(d.AddedAt, ""),
	}
}

// PageDTO is the API's paging envelope.
type PageDTO[D any] struct {
	Content       []D   `json:"content"`
	Number        int   `json:"number"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Last          bool  `json:"last"`
}

// MapPage converts the envelope, mapping each element with fn.
func MapPage[D, T any](p PageDTO[D], fn func(D) T) Page[T] {
	return Page[T]{
		Content:       mapSlice(p.Content, fn),
		CurrentPage:   p.Number,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
		IsLast:        p.Last,
	}
}

func mapSlice[D, T any](in []D, fn func(D) T) []T {
	out := make([]T, len(in))
	for i, d := range in {
		out[i] = fn(d)
	}
	return out
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
