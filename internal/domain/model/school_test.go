package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Paid", PaymentStatusPaid.String())
	assert.Equal(t, "Unknown", PaymentStatus(99).String())
	assert.Equal(t, "Bank transfer", PaymentMethodBankTransfer.String())
	assert.Equal(t, "Ongoing", ClassStatusOngoing.String())
	assert.Equal(t, "Active", StudentStatusActive.String())
}

func TestOptionsOrder(t *testing.T) {
	opts := PaymentStatuses()
	assert.Len(t, opts, 4)
	assert.Equal(t, Option{Value: "0", Label: "Pending"}, opts[0])
	assert.Equal(t, "3", opts[3].Value)
	assert.Len(t, ClassStatuses(), 5)
	assert.Len(t, StudentStatuses(), 4)
	assert.Len(t, PaymentMethods(), 4)
}

func TestTransactionAmount(t *testing.T) {
	assert.Equal(t, "1,500,000 VND", Transaction{Amount: 1500000}.FormattedAmount())
	assert.Equal(t, "950 VND", Transaction{Amount: 950, Currency: "VND"}.FormattedAmount())
	assert.Equal(t, "12.50 USD", Transaction{Amount: 12.5, Currency: "USD"}.FormattedAmount())
}

func TestClass(t *testing.T) {
	c := Class{Enrolled: 4, Capacity: 8}
	assert.Equal(t, "4/8", c.Seats())
	assert.True(t, c.CanPublish())
	c.Published = true
	assert.False(t, c.CanPublish())
}
