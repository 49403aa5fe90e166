package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.UnixMilli(1_700_000_000_123) }

func TestProductDefaults(t *testing.T) {
	var dto ProductDTO
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "p-1", "name": "Lamp", "description": "Bright", "categories": [" home", "Home", ""], "price": 19.5
	}`), &dto))

	p := dto.ToDomain()
	assert.Equal(t, Product{
		ID:              "p-1",
		Name:            "Lamp",
		Description:     "Bright",
		Categories:      []string{"home"},
		Price:           19.5,
		AverageRating:   0.0,
		ReviewCount:     0,
		RatingBreakdown: map[int]int{},
		AISummary:       "",
	}, p)
}

func TestProductKeepsPresentFields(t *testing.T) {
	var dto ProductDTO
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "p-1", "name": "Lamp", "description": "", "categories": null, "price": 0,
		"imageUrl": "lamp.png", "averageRating": 4.5, "reviewCount": 12,
		"ratingBreakdown": {"5": 8, "4": 4}, "aiSummary": "People like it"
	}`), &dto))

	p := dto.ToDomain()
	assert.Equal(t, "lamp.png", p.ImageURL)
	assert.InDelta(t, 4.5, p.AverageRating, 1e-9)
	assert.Equal(t, 12, p.ReviewCount)
	assert.Equal(t, map[int]int{5: 8, 4: 4}, p.RatingBreakdown)
	assert.Equal(t, "People like it", p.AISummary)
	assert.Empty(t, p.Categories)
	assert.NotNil(t, p.Categories)
}

func TestReviewDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Review
	}{
		{
			name: "all optional fields absent",
			body: `{"productId":"p-1","rating":4,"comment":"Nice"}`,
			want: Review{ID: 1_700_000_000_123, ProductID: "p-1", UserName: "Anonymous", Rating: 4, Comment: "Nice"},
		},
		{
			name: "blank reviewer name",
			body: `{"id":9,"productId":"p-1","reviewerName":"","rating":1,"comment":"Meh"}`,
			want: Review{ID: 9, ProductID: "p-1", UserName: "Anonymous", Rating: 1, Comment: "Meh"},
		},
		{
			name: "all fields present",
			body: `{"id":3,"productId":"p-1","reviewerName":"Ana","rating":5,"comment":"Great","createdAt":"2024-01-02","helpfulCount":7}`,
			want: Review{ID: 3, ProductID: "p-1", UserName: "Ana", Rating: 5, Comment: "Great", CreatedAt: "2024-01-02", HelpfulCount: 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto ReviewDTO
			require.NoError(t, json.Unmarshal([]byte(tt.body), &dto))
			assert.Equal(t, tt.want, dto.ToDomain(fixedClock))
		})
	}
}

func TestNotificationReadDefaultsToFalse(t *testing.T) {
	var dto NotificationDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n-1","title":"Price drop","message":"Lamp is cheaper"}`), &dto))
	n := dto.ToDomain()
	assert.False(t, n.Read)
	assert.Empty(t, n.ProductID)
}

func TestMapPage(t *testing.T) {
	var dto PageDTO[ProductDTO]
	require.NoError(t, json.Unmarshal([]byte(`{
		"content": [{"id":"p-1"},{"id":"p-2"}],
		"number": 2, "totalPages": 3, "totalElements": 42, "last": false
	}`), &dto))

	page := MapPage(dto, ProductDTO.ToDomain)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(42), page.TotalElements)
	assert.False(t, page.IsLast)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "p-2", page.Content[1].ID)
}

func TestMapPageEmptyContent(t *testing.T) {
	page := MapPage(PageDTO[ProductDTO]{Last: true}, ProductDTO.ToDomain)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.True(t, page.IsLast)
}
