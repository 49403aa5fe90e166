package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, ProductList{}.Validate())
	assert.NoError(t, AIAssistant{ProductID: "7", ProductName: "Lamp"}.Validate())
	assert.ErrorIs(t, AIAssistant{ProductID: "7"}.Validate(), ErrInvalidRoute)
	assert.ErrorIs(t, NotificationDetail{}.Validate(), ErrInvalidRoute)
	assert.ErrorIs(t, ProductDetails{Name: "Lamp"}.Validate(), ErrInvalidRoute)
}

func TestRouteJSON(t *testing.T) {
	for _, r := range sampleRoutes() {
		data, err := MarshalRoute(r)
		require.NoError(t, err)
		got, err := UnmarshalRoute(data)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := MarshalRoute(nil)
	assert.ErrorIs(t, err, ErrInvalidRoute)
	_, err = UnmarshalRoute([]byte(`{"kind":"ai_assistant","params":{"productId":"7"}}`))
	assert.ErrorIs(t, err, ErrInvalidRoute)
}
