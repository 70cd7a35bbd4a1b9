package services

import (
	"testing"
	"time"

	"backend/internal/domain/models"
)

func TestStatementServiceGenerate(t *testing.T) {
	statementLoader := func(id int64) (creditStatementData, error) {
		issued := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		return creditStatementData{
			Customer: models.Customer{ID: id, Name: "Maria", Phone: "11 99999-0000"},
			Credits: []models.Credit{
				{ID: 3, OwnerID: id, OriginalAmount: 30000, AvailableBalance: 15000, Status: models.CreditPartiallyUsed, IssuedAt: issued},
			},
			Usages: map[int64][]models.CreditUsage{
				3: {{ID: 100, CreditID: 3, TripID: 1, BeneficiaryID: 42, AmountApplied: 15000, LinkedAt: issued}},
			},
		}, nil
	}
	rosterLoader := func(id int64) (tripRosterData, error) {
		return tripRosterData{
			Trip: models.Trip{ID: id, Name: "Praia", Destination: "Maceio", DepartureDate: "2026-01-10", Fare: 10000},
			Members: []models.TripMembership{
				{ID: 9, TripID: id, PassengerID: 42, PassengerName: "Joao", BusID: 5, CreditAmountApplied: 10000, PaymentStatus: "PagoCompleto"},
			},
		}, nil
	}

	svc := StatementService{StatementLoader: statementLoader, RosterLoader: rosterLoader}

	pdf, filename, err := svc.GenerateCreditStatement(7)
	if err != nil {
		t.Fatalf("GenerateCreditStatement returned error: %v", err)
	}
	if len(pdf) == 0 || filename == "" {
		t.Fatalf("GenerateCreditStatement returned empty data")
	}

	roster, rosterName, err := svc.GenerateTripRoster(1)
	if err != nil {
		t.Fatalf("GenerateTripRoster returned error: %v", err)
	}
	if len(roster) == 0 || rosterName == "" {
		t.Fatalf("GenerateTripRoster returned empty data")
	}
}
