package wsticket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagauto/tagauto/internal/app/system/wsticket"
)

func TestIssueAndRedeem(t *testing.T) {
	iss := wsticket.NewIssuer("0123456789abcdef0123456789abcdef")

	ticket, err := iss.Issue("u-42")
	require.NoError(t, err)
	require.NotEmpty(t, ticket)

	uid, err := iss.Redeem(ticket)
	require.NoError(t, err)
	assert.Equal(t, "u-42", uid)
}

func TestRedeem_OnlyOnce(t *testing.T) {
	iss := wsticket.NewIssuer("0123456789abcdef0123456789abcdef")

	ticket, err := iss.Issue("u-42")
	require.NoError(t, err)

	_, err = iss.Redeem(ticket)
	require.NoError(t, err)

	_, err = iss.Redeem(ticket)
	assert.ErrorIs(t, err, wsticket.ErrInvalid)
}

func TestRedeem_Tampered(t *testing.T) {
	iss := wsticket.NewIssuer("0123456789abcdef0123456789abcdef")

	_, err := iss.Redeem("garbage")
	assert.ErrorIs(t, err, wsticket.ErrInvalid)
}

func TestRedeem_DifferentKey(t *testing.T) {
	a := wsticket.NewIssuer("0123456789abcdef0123456789abcdef")
	b := wsticket.NewIssuer("fedcba9876543210fedcba9876543210")

	ticket, err := a.Issue("u-1")
	require.NoError(t, err)

	_, err = b.Redeem(ticket)
	assert.ErrorIs(t, err, wsticket.ErrInvalid)
}
