package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/team-todo-api/internal/models"
)

func TestFromUser(t *testing.T) {
	teamID := uint64(4)
	id := FromUser(&models.User{ID: 9, TeamID: &teamID, Role: models.RoleAdmin})

	assert.Equal(t, Identity{UserID: 9, TeamID: 4, Role: models.RoleAdmin}, id)
	assert.True(t, id.HasTeam())
	assert.True(t, id.IsAdmin())

	loner := FromUser(&models.User{ID: 2, Role: models.RoleMember})
	assert.False(t, loner.HasTeam())
	assert.False(t, loner.IsAdmin())
	assert.Equal(t, uint64(2), loner.Viewer().UserID)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	want := Identity{UserID: 7, TeamID: 3, Role: models.RoleMember}

	raw, expiresAt, err := tokens.Issue(want)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTokensRejectBadInput(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	_, err := tokens.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)

	other := NewTokens("other", time.Hour)
	raw, _, err := other.Issue(Identity{UserID: 1})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := tokens.Issue(Identity{UserID: 1})
	require.NoError(t, err)
	tokens.now = time.Now
	_, err = tokens.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
