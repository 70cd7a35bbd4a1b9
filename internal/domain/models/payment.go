package models

// PaymentCategory separa os dois sub-razoes liquidaveis de forma independente.
type PaymentCategory string

const (
	CategoryTrip  PaymentCategory = "trip"
	CategoryTours PaymentCategory = "tours"
)

func (c PaymentCategory) Valid() bool {
	return c == CategoryTrip || c == CategoryTours
}

// PaymentRecord e um pagamento avulso (dinheiro/PIX/...) registrado fora do credito.
type PaymentRecord struct {
	ID           int64           `json:"id"`
	MembershipID int64           `json:"membershipId"`
	Category     PaymentCategory `json:"category"`
	Amount       int64           `json:"amount"`
	Method       string          `json:"method"`
	PaidAt       string          `json:"paidAt"`
	Notes        string          `json:"notes,omitempty"`
}
