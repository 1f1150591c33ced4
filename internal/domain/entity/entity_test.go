package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTariff_IsActiveAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	assert.True(t, (&Tariff{}).IsActiveAt(now), "open-ended tariff is active")
	assert.True(t, (&Tariff{ValidUntil: &later}).IsActiveAt(now))
	assert.False(t, (&Tariff{ValidUntil: &earlier}).IsActiveAt(now))
	assert.False(t, (&Tariff{ValidUntil: &now}).IsActiveAt(now), "end date equal to the instant is closed")
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Role: Role{Name: RoleAgent}}
	assert.True(t, u.HasRole(RoleAgent))
	assert.False(t, u.HasRole(RoleAdmin))
}
