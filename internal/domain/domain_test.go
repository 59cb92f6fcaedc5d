package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	assert.True(t, Anonymous().IsAnonymous())
	assert.Equal(t, "", Anonymous().UserID())
	assert.True(t, Authenticated(&User{}).IsAnonymous())

	alice := Authenticated(&User{ID: "u-1", Name: "Alice"})
	assert.False(t, alice.IsAnonymous())
	assert.Equal(t, "u-1", alice.UserID())
}

func TestTicketOwnedBy(t *testing.T) {
	ticket := &Ticket{ID: "t-1", OwnerUserID: "u-1"}

	assert.True(t, ticket.OwnedBy("u-1"))
	assert.False(t, ticket.OwnedBy("u-2"))
	assert.False(t, ticket.OwnedBy(""))

	var missing *Ticket
	assert.False(t, missing.OwnedBy("u-1"))
}
