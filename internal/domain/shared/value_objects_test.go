package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentID(t *testing.T) {
	t.Run("NewIsValidUUID", func(t *testing.T) {
		id := NewComponentID()
		parsed, err := ParseComponentID(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equals(parsed))
	})

	t.Run("RejectsNonUUID", func(t *testing.T) {
		_, err := ParseComponentID("not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidComponentID)
	})
}

func TestUserID(t *testing.T) {
	t.Run("TrimsWhitespace", func(t *testing.T) {
		id, err := NewUserID("  alice  ")
		require.NoError(t, err)
		assert.Equal(t, "alice", id.String())
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		_, err := NewUserID("   ")
		assert.ErrorIs(t, err, ErrEmptyUserID)
	})

	t.Run("RejectsOverlong", func(t *testing.T) {
		long := make([]byte, MaxUserIDLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := NewUserID(string(long))
		assert.ErrorIs(t, err, ErrUserIDTooLong)
	})
}

func TestMoney(t *testing.T) {
	t.Run("RejectsNegative", func(t *testing.T) {
		_, err := NewMoney(-1)
		assert.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("Arithmetic", func(t *testing.T) {
		a := MustMoney(1050)
		b := MustMoney(2575)
		assert.Equal(t, int64(3625), a.Add(b).Cents())
		assert.Equal(t, int64(3150), a.MultiplyBy(3).Cents())
		assert.True(t, Zero().IsZero())
	})
}

func TestVersion(t *testing.T) {
	v := NewVersion()
	assert.Equal(t, 0, v.Int())
	assert.Equal(t, 1, v.Next().Int())
	assert.True(t, ParseVersion(3).Equals(ParseVersion(3)))
}
