package model

import (
	"fmt"
	"time"
)

// PaymentStatus is the settlement state of a tuition transaction.
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = iota
	PaymentStatusPaid
	PaymentStatusFailed
	PaymentStatusRefunded
)

var paymentStatusLabels = map[PaymentStatus]string{
	PaymentStatusPending:  "Pending",
	PaymentStatusPaid:     "Paid",
	PaymentStatusFailed:   "Failed",
	PaymentStatusRefunded: "Refunded",
}

func (s PaymentStatus) String() string {
	if l, ok := paymentStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// PaymentStatuses lists every payment status in display order.
func PaymentStatuses() []Option {
	return options(paymentStatusLabels, PaymentStatusRefunded)
}

// PaymentMethod is how a transaction was paid.
type PaymentMethod int

const (
	PaymentMethodCash PaymentMethod = iota
	PaymentMethodBankTransfer
	PaymentMethodCard
	PaymentMethodEWallet
)

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCash:         "Cash",
	PaymentMethodBankTransfer: "Bank transfer",
	PaymentMethodCard:         "Card",
	PaymentMethodEWallet:      "E-wallet",
}

func (m PaymentMethod) String() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	return "Unknown"
}

// PaymentMethods lists every payment method in display order.
func PaymentMethods() []Option {
	return options(paymentMethodLabels, PaymentMethodEWallet)
}

// Transaction is one tuition payment.
type Transaction struct {
	ID            int           `json:"id"`
	Code          string        `json:"code"`
	StudentName   *string       `json:"studentName"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Note          *string       `json:"note"`
	CreatedAt     time.Time     `json:"createdAt"`
	PaidAt        *time.Time    `json:"paidAt"`
}

// FormattedAmount renders the amount with its currency code.
func (t Transaction) FormattedAmount() string {
	cur := t.Currency
	if cur == "" {
		cur = "VND"
	}
	if cur == "VND" {
		return fmt.Sprintf("%s %s", groupThousands(int64(t.Amount)), cur)
	}
	return fmt.Sprintf("%.2f %s", t.Amount, cur)
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return sign + string(out)
}
