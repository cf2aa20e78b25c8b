package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	for _, role := range Roles {
		assert.True(t, IsValidRole(role))
	}

	assert.False(t, IsValidRole("SUPERUSER"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestUser_IsAdministrator(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdministrator())
	assert.False(t, (&User{Role: RoleAdult}).IsAdministrator())
	assert.False(t, (&User{}).IsAdministrator())
}

func TestEventTag(t *testing.T) {
	assert.Equal(t, "event:42", EventTag(42))
	assert.NotEqual(t, ProvisionalImageTag, EventTag(0))
}
