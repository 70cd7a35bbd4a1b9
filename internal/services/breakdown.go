package services

import (
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
)

// BreakdownCalc monta o PaymentBreakdown de um membership a partir do ledger:
// credito aplicado + pagamentos avulsos, separados em viagem e passeios.
//
// O credito cobre primeiro o sub-razao da viagem (tarifa - desconto + passagem);
// o excedente vai para os passeios. E a unica divisao coerente com a regra de
// reversao "fundos abaixo da tarifa => passageiro sai da viagem".
type BreakdownCalc struct {
	MembershipRepo repositories.MembershipRepository
	PaymentRepo    repositories.PaymentHistoryRepository
}

func (b BreakdownCalc) ForMembership(ex repositories.Execer, m models.TripMembership, creditApplied int64) (domain.PaymentBreakdown, error) {
	tourDue, err := b.MembershipRepo.SumTourFares(ex, m.TripID, m.PassengerID)
	if err != nil {
		return domain.PaymentBreakdown{}, err
	}

	tripCash, err := b.PaymentRepo.SumByCategory(ex, m.ID, models.CategoryTrip)
	if err != nil {
		return domain.PaymentBreakdown{}, err
	}
	tourCash, err := b.PaymentRepo.SumByCategory(ex, m.ID, models.CategoryTours)
	if err != nil {
		return domain.PaymentBreakdown{}, err
	}

	return splitBreakdown(m.TripDue(), tourDue, creditApplied, tripCash, tourCash), nil
}

func splitBreakdown(tripDue, tourDue, creditApplied, tripCash, tourCash int64) domain.PaymentBreakdown {
	creditToTrip := min(creditApplied, tripDue)
	creditToTour := creditApplied - creditToTrip
	return domain.PaymentBreakdown{
		TripDue:  tripDue,
		TripPaid: creditToTrip + tripCash,
		TourDue:  tourDue,
		TourPaid: creditToTour + tourCash,
	}
}
