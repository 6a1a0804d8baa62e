package ddb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Stored profiles carry lowercased emails, so the GSI lookup key must land
// on the same partition no matter how the login request cased the address.
func TestEmailKeyNormalization(t *testing.T) {
	assert.Equal(t, "EMAIL#builder@example.com", emailPK("Builder@Example.COM"))
	assert.Equal(t, emailPK("builder@example.com"), emailPK(" BUILDER@EXAMPLE.COM "))
}
