package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	cust, err := NewCustomer("+919876543210", "Asha Patel", "asha@example.com", "12 MG Road, Pune")
	require.NoError(t, err)

	assert.Equal(t, "+919876543210", cust.Phone())
	assert.Equal(t, RoleCustomer, cust.Role())
}

func TestNewCustomer_Validation(t *testing.T) {
	_, err := NewCustomer("12345", "Asha Patel", "", "")
	assert.Error(t, err, "short phone should be rejected")

	_, err = NewCustomer("+919876543210", "  ", "", "")
	assert.Error(t, err, "blank name should be rejected")

	_, err = NewCustomer("+919876543210", "Asha Patel", "not-an-email", "")
	assert.Error(t, err, "malformed email should be rejected")
}

func TestCustomer_UpdateProfile(t *testing.T) {
	cust, err := NewCustomer("+919876543210", "Asha Patel", "", "")
	require.NoError(t, err)

	require.NoError(t, cust.UpdateProfile("Asha P. Deshmukh", "asha@example.com", "44 FC Road, Pune"))
	assert.Equal(t, "Asha P. Deshmukh", cust.FullName())
	assert.Equal(t, "44 FC Road, Pune", cust.Address())

	assert.Error(t, cust.UpdateProfile("", "asha@example.com", ""))
}

func TestCustomer_PromoteToAdmin(t *testing.T) {
	cust, err := NewCustomer("+919876543210", "Asha Patel", "", "")
	require.NoError(t, err)

	cust.PromoteToAdmin()
	assert.Equal(t, RoleAdmin, cust.Role())
}
