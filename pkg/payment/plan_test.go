package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/payment"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := payment.DefaultCatalog()
	assert.Equal(t, "BDT", c.Currency)

	premium, ok := c.Plan("premium")
	require.True(t, ok)
	assert.Equal(t, 1500, premium.Price)
	assert.Equal(t, session.RolePremium, premium.Grants.Role)
	require.NotNil(t, premium.Grants.IsPremium)
	assert.True(t, *premium.Grants.IsPremium)

	admin, ok := c.Plan("admin")
	require.True(t, ok)
	assert.Equal(t, 3000, admin.Price)
	assert.Nil(t, admin.Grants.IsPremium)

	up := admin.Grants.Upgrade()
	assert.Equal(t, "admin", up.Role)
	assert.Nil(t, up.IsPremium)

	_, ok = c.Plan("gold")
	assert.False(t, ok)
}

func TestParseCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not yaml":    "plans: [",
		"no currency": "plans: [{id: a, price: 1, grants: {role: premium}}]",
		"no plans":    "currency: BDT",
		"missing id":  "currency: BDT\nplans: [{price: 1, grants: {role: premium}}]",
		"duplicate":   "currency: BDT\nplans: [{id: a, price: 1, grants: {role: premium}}, {id: a, price: 2, grants: {role: admin}}]",
		"zero price":  "currency: BDT\nplans: [{id: a, price: 0, grants: {role: premium}}]",
		"grants user": "currency: BDT\nplans: [{id: a, price: 1, grants: {role: user}}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := payment.ParseCatalog([]byte(doc))
			assert.ErrorIs(t, err, payment.ErrInvalidCatalog)
		})
	}
}

func TestPlan_HeldBy(t *testing.T) {
	t.Parallel()

	c := payment.DefaultCatalog()
	premium, _ := c.Plan("premium")
	admin, _ := c.Plan("admin")

	user := authed(session.RoleUser, false)
	prem := authed(session.RolePremium, true)
	adm := authed(session.RoleAdmin, false)

	assert.False(t, premium.HeldBy(user))
	assert.True(t, premium.HeldBy(prem))
	assert.False(t, premium.HeldBy(adm), "admin without the premium flag can still buy premium")
	assert.False(t, admin.HeldBy(prem))
	assert.True(t, admin.HeldBy(adm))
}
