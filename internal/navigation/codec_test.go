package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoutes() []Route {
	return []Route{
		ProductList{},
		ProductDetails{ProductID: "42"},
		ProductDetails{ProductID: "42", ImageURL: "https://cdn.example.com/a b.png?w=200", Name: "Desk & Lamp"},
		Notifications{},
		NotificationDetail{NotificationID: "n/1"},
		Wishlist{},
		AIAssistant{ProductID: "7", ProductName: "A/B"},
		AIAssistant{ProductID: "7", ProductName: "50% off? yes"},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, r := range sampleRoutes() {
		t.Run(Encode(r), func(t *testing.T) {
			got, err := Decode(Encode(r))
			require.NoError(t, err)
			assert.Equal(t, r, got)
		})
	}
}

func TestEncodeEscapesSlash(t *testing.T) {
	path := Encode(AIAssistant{ProductID: "7", ProductName: "A/B"})
	assert.Equal(t, "ai_assistant/7/A%2FB", path)

	r, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, AIAssistant{ProductID: "7", ProductName: "A/B"}, r)
}

func TestEncodeFixedPaths(t *testing.T) {
	tests := map[string]Route{
		"product_list":            ProductList{},
		"product_details/42":      ProductDetails{ProductID: "42"},
		"notifications":           Notifications{},
		"notification_detail/n-1": NotificationDetail{NotificationID: "n-1"},
		"wishlist":                Wishlist{},
		"product_details/42?imageUrl=x.png&name=Desk": ProductDetails{ProductID: "42", ImageURL: "x.png", Name: "Desk"},
	}
	for want, r := range tests {
		assert.Equal(t, want, Encode(r))
	}
	assert.Equal(t, "product_list", Encode(nil))
}

func TestDecodeAcceptsLeadingSlash(t *testing.T) {
	r, err := Decode("/wishlist")
	require.NoError(t, err)
	assert.Equal(t, Wishlist{}, r)
}

func TestDecodeRejectsUnknownPaths(t *testing.T) {
	for _, path := range []string{
		"",
		"settings",
		"product_details",
		"product_details/",
		"product_details/1/2",
		"wishlist/extra",
		"ai_assistant/7",
		"ai_assistant/7/A/B",
		"notification_detail/%zz",
	} {
		t.Run(path, func(t *testing.T) {
			_, err := Decode(path)
			assert.ErrorIs(t, err, ErrRouteDecode)
		})
	}
}

func TestLegacyTemplate(t *testing.T) {
	assert.Equal(t, "ai_assistant/7/A/B", LegacyTemplate(AIAssistant{ProductID: "7", ProductName: "A/B"}))
	assert.Equal(t, "product_details/42", LegacyTemplate(ProductDetails{ProductID: "42", Name: "dropped"}))
	assert.Equal(t, "notification_detail/n 1", LegacyTemplate(NotificationDetail{NotificationID: "n 1"}))
	assert.Equal(t, "wishlist", LegacyTemplate(Wishlist{}))
	assert.Equal(t, "product_list", LegacyTemplate(nil))
}

func TestLegacyTemplateDiffersFromPathCodec(t *testing.T) {
	r := AIAssistant{ProductID: "7", ProductName: "A/B"}
	legacy := LegacyTemplate(r)
	assert.NotEqual(t, Encode(r), legacy)

	_, err := Decode(legacy)
	assert.ErrorIs(t, err, ErrRouteDecode, "unescaped separators do not survive a decode")
}

func TestLegacyTemplateRoundTripsSimpleParams(t *testing.T) {
	for _, r := range []Route{
		ProductList{},
		ProductDetails{ProductID: "42"},
		NotificationDetail{NotificationID: "n-1"},
		AIAssistant{ProductID: "7", ProductName: "Lamp"},
	} {
		got, err := Decode(LegacyTemplate(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestPattern(t *testing.T) {
	for _, k := range Kinds {
		assert.NotEmpty(t, Pattern(k), k)
	}
	assert.Equal(t, "ai_assistant/{productId}/{productName}", Pattern(KindAIAssistant))
	assert.Empty(t, Pattern("settings"))
}
