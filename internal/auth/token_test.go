package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetTokenRoundTrip(t *testing.T) {
	token, err := GenerateWidgetToken("secret", "store1", time.Hour)
	require.NoError(t, err)

	site, err := ValidateWidgetToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "store1", site)
}

func TestWidgetTokenWrongSecret(t *testing.T) {
	token, err := GenerateWidgetToken("secret", "store1", time.Hour)
	require.NoError(t, err)

	_, err = ValidateWidgetToken("other-secret", token)
	assert.Error(t, err)
}

func TestWidgetTokenExpired(t *testing.T) {
	token, err := GenerateWidgetToken("secret", "store1", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateWidgetToken("secret", token)
	assert.Error(t, err)
}

func TestWidgetTokenGarbage(t *testing.T) {
	_, err := ValidateWidgetToken("secret", "not-a-token")
	assert.Error(t, err)
}
