package models

import "backend/internal/domain"

// TripMembership registra a participacao de um passageiro em uma viagem.
// Criado/atualizado/removido apenas pelos engines de alocacao e reversao.
type TripMembership struct {
	ID                  int64                `json:"id"`
	TripID              int64                `json:"tripId"`
	PassengerID         int64                `json:"passengerId"`
	PassengerName       string               `json:"passengerName"`
	BusID               int64                `json:"busId"`
	FareAmount          int64                `json:"fareAmount"`
	Discount            int64                `json:"discount"`
	TicketID            int64                `json:"ticketId,omitempty"`
	TicketFare          int64                `json:"ticketFare"`
	PaidViaCredit       bool                 `json:"paidViaCredit"`
	CreditOriginID      int64                `json:"creditOriginId,omitempty"`
	CreditAmountApplied int64                `json:"creditAmountApplied"`
	IsFree              bool                 `json:"isFree"`
	PaymentStatus       domain.PaymentStatus `json:"paymentStatus"`
}

// TripFareOwed e o minimo que mantem o passageiro sentado: tarifa menos desconto.
func (m TripMembership) TripFareOwed() int64 {
	owed := m.FareAmount - m.Discount
	if owed < 0 {
		return 0
	}
	return owed
}

// TripDue inclui a passagem opcional; e o sub-razao "viagem" do breakdown.
func (m TripMembership) TripDue() int64 {
	return m.TripFareOwed() + m.TicketFare
}

// MembershipTour liga um passeio contratado ao passageiro da viagem.
type MembershipTour struct {
	ID          int64 `json:"id"`
	TripID      int64 `json:"tripId"`
	PassengerID int64 `json:"passengerId"`
	TourID      int64 `json:"tourId"`
	Fare        int64 `json:"fare"`
}
