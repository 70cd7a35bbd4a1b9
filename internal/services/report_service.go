package services

import (
	"backend/internal/domain/models"
	"backend/internal/repositories"
)

// ReportService consolida a receita por viagem: devido, coberto por credito,
// pago avulso e pendente.
type ReportService struct {
	CatalogRepo    repositories.CatalogRepository
	MembershipRepo repositories.MembershipRepository
	PaymentRepo    repositories.PaymentHistoryRepository
}

type TripRevenueRow struct {
	TripID     int64  `json:"tripId"`
	TripName   string `json:"tripName"`
	Passengers int    `json:"passengers"`
	TotalDue   int64  `json:"totalDue"`
	ViaCredit  int64  `json:"viaCredit"`
	CashPaid   int64  `json:"cashPaid"`
	Pending    int64  `json:"pending"`
}

func (s ReportService) TripRevenue() ([]TripRevenueRow, error) {
	trips, err := s.CatalogRepo.ListTrips(nil)
	if err != nil {
		return nil, err
	}

	out := []TripRevenueRow{}
	for _, trip := range trips {
		row := TripRevenueRow{TripID: trip.ID, TripName: trip.Name}

		members, err := s.MembershipRepo.ListByTrip(nil, trip.ID)
		if err != nil {
			return nil, err
		}
		row.Passengers = len(members)

		for _, m := range members {
			// brinde nao deve nada; cancelado ja saiu da contabilidade de cobranca
			if m.IsFree {
				continue
			}
			tourDue, err := s.MembershipRepo.SumTourFares(nil, m.TripID, m.PassengerID)
			if err != nil {
				return nil, err
			}
			row.TotalDue += m.TripDue() + tourDue
			row.ViaCredit += m.CreditAmountApplied

			tripCash, err := s.PaymentRepo.SumByCategory(nil, m.ID, models.CategoryTrip)
			if err != nil {
				return nil, err
			}
			tourCash, err := s.PaymentRepo.SumByCategory(nil, m.ID, models.CategoryTours)
			if err != nil {
				return nil, err
			}
			row.CashPaid += tripCash + tourCash
		}

		row.Pending = max(int64(0), row.TotalDue-row.ViaCredit-row.CashPaid)
		out = append(out, row)
	}
	return out, nil
}
