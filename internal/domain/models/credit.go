package models

import "time"

type CreditStatus string

const (
	CreditAvailable     CreditStatus = "available"
	CreditPartiallyUsed CreditStatus = "partially_used"
	CreditUsed          CreditStatus = "used"
	CreditRefunded      CreditStatus = "refunded"
)

// Credit e um saldo pre-pago do cliente, consumivel em qualquer viagem.
// Invariante: 0 <= AvailableBalance <= OriginalAmount (centavos).
type Credit struct {
	ID               int64        `json:"id"`
	OwnerID          int64        `json:"ownerId"`
	OriginalAmount   int64        `json:"originalAmount"`
	AvailableBalance int64        `json:"availableBalance"`
	Status           CreditStatus `json:"status"`
	IssuedAt         time.Time    `json:"issuedAt"`
	Notes            string       `json:"notes,omitempty"`
}

// CreditUsage liga parte de um credito a cobranca de um beneficiario em uma viagem.
// Nao tem maquina de estados: existe ou foi deletado pela reversao.
type CreditUsage struct {
	ID            int64     `json:"id"`
	CreditID      int64     `json:"creditId"`
	TripID        int64     `json:"tripId"`
	BeneficiaryID int64     `json:"beneficiaryId"`
	AmountApplied int64     `json:"amountApplied"`
	LinkedAt      time.Time `json:"linkedAt"`
}

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
