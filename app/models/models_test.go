package models_test

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
)

var orderNumberRE = regexp.MustCompile(`^ORD-[0-9a-f]{8}$`)

func TestRoleTransitions(t *testing.T) {
	cases := []struct {
		from, to models.Role
		ok       bool
	}{
		{models.RoleCustomer, models.RoleVendor, true},
		{models.RoleVendor, models.RoleCustomer, true},
		{models.RoleCustomer, models.RoleAdmin, false},
		{models.RoleVendor, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleVendor, false},
		{models.RoleAdmin, models.RoleCustomer, false},
		{models.RoleVendor, models.RoleVendor, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestParseRole(t *testing.T) {
	r, err := models.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, r)

	_, err = models.ParseRole("superuser")
	assert.Error(t, err)
}

func TestNewUserActivation(t *testing.T) {
	assert.True(t, models.NewUser("a", "a@x.io", "h", models.RoleVendor).IsActive)
	assert.False(t, models.NewUser("b", "b@x.io", "h", models.RoleCustomer).IsActive)
	assert.False(t, models.NewUser("c", "c@x.io", "h", models.RoleAdmin).IsActive)
}

func TestBecomeVendor(t *testing.T) {
	u := models.NewUser("Ann", "ann@x.io", "h", models.RoleCustomer)
	profile := models.VendorProfile{BusinessName: "Ann's", BusinessAddress: "1 Main St", PhoneNumber: "555"}

	require.NoError(t, u.BecomeVendor(profile, true))
	assert.Equal(t, models.RoleVendor, u.Role)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.BusinessName)
	assert.Equal(t, "Ann's", *u.BusinessName)

	assert.ErrorIs(t, u.BecomeVendor(profile, true), models.ErrAlreadyVendor)

	admin := models.NewUser("Root", "root@x.io", "h", models.RoleAdmin)
	assert.ErrorIs(t, admin.BecomeVendor(profile, true), models.ErrRoleLocked)
}

func TestRevertToCustomer(t *testing.T) {
	u := models.NewUser("Ann", "ann@x.io", "h", models.RoleCustomer)
	require.NoError(t, u.BecomeVendor(models.VendorProfile{BusinessName: "a", BusinessAddress: "b", PhoneNumber: "c"}, true))

	require.NoError(t, u.RevertToCustomer())
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.False(t, u.IsActive)
	assert.Nil(t, u.BusinessName)
	assert.Nil(t, u.BusinessAddress)
	assert.Nil(t, u.PhoneNumber)

	assert.ErrorIs(t, u.RevertToCustomer(), models.ErrNotVendor)
}

func TestApplyProfilePatch(t *testing.T) {
	u := models.NewUser("Ann", "ann@x.io", "h", models.RoleCustomer)
	assert.ErrorIs(t, u.ApplyProfilePatch(models.VendorProfilePatch{}), models.ErrNotVendor)

	require.NoError(t, u.BecomeVendor(models.VendorProfile{BusinessName: "a", BusinessAddress: "b", PhoneNumber: "c"}, false))
	name := "renamed"
	require.NoError(t, u.ApplyProfilePatch(models.VendorProfilePatch{BusinessName: &name}))
	assert.Equal(t, "renamed", *u.BusinessName)
	assert.Equal(t, "b", *u.BusinessAddress, "untouched field kept")
	assert.True(t, u.IsActive)
}

func TestUserJSONHidesPassword(t *testing.T) {
	u := models.NewUser("Ann", "ann@x.io", "$2a$10$secret", models.RoleVendor)
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"isActive":true`)
}

func TestNewOrderNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := models.NewOrderNumber()
		assert.Regexp(t, orderNumberRE, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestNewOrder(t *testing.T) {
	o := models.NewOrder(3, decimal.RequireFromString("19.999"), "", "lamp")
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, models.DefaultCurrency, o.Currency)
	assert.Equal(t, "20", o.Amount.String())
	assert.Regexp(t, orderNumberRE, o.OrderNumber)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":20`)
}

func TestParseOrderStatus(t *testing.T) {
	st, err := models.ParseOrderStatus("CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, st)

	_, err = models.ParseOrderStatus("pending")
	assert.Error(t, err)
}
