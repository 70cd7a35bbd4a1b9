package services

import (
	"bytes"
	"fmt"
	"strings"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// StatementService gera os PDFs de extrato de credito do cliente e de lista de
// passageiros da viagem.
type StatementService struct {
	CreditRepo     repositories.CreditRepository
	UsageRepo      repositories.CreditUsageRepository
	CustomerRepo   repositories.CustomerRepository
	MembershipRepo repositories.MembershipRepository
	CatalogRepo    repositories.CatalogRepository
	RequestID      string

	// Loaders injetaveis nos testes.
	StatementLoader func(int64) (creditStatementData, error)
	RosterLoader    func(int64) (tripRosterData, error)
}

type creditStatementData struct {
	Customer models.Customer
	Credits  []models.Credit
	Usages   map[int64][]models.CreditUsage
}

type tripRosterData struct {
	Trip    models.Trip
	Members []models.TripMembership
}

func (s StatementService) GenerateCreditStatement(customerID int64) ([]byte, string, error) {
	data, err := s.loadStatementData(customerID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "statement", "credit_statement", fmt.Sprintf("customer_id=%d", customerID))
	return buildStatementPDF(data)
}

func (s StatementService) GenerateTripRoster(tripID int64) ([]byte, string, error) {
	data, err := s.loadRosterData(tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "statement", "trip_roster", fmt.Sprintf("trip_id=%d", tripID))
	return buildRosterPDF(data)
}

func (s StatementService) loadStatementData(customerID int64) (creditStatementData, error) {
	if s.StatementLoader != nil {
		return s.StatementLoader(customerID)
	}

	var out creditStatementData
	customer, err := s.CustomerRepo.GetByID(nil, customerID)
	if err != nil {
		return out, err
	}
	out.Customer = customer

	credits, err := s.CreditRepo.ListByOwner(nil, customerID)
	if err != nil {
		return out, err
	}
	out.Credits = credits

	out.Usages = map[int64][]models.CreditUsage{}
	for _, c := range credits {
		usages, err := s.UsageRepo.ListByCredit(nil, c.ID)
		if err != nil {
			return out, err
		}
		out.Usages[c.ID] = usages
	}
	return out, nil
}

func (s StatementService) loadRosterData(tripID int64) (tripRosterData, error) {
	if s.RosterLoader != nil {
		return s.RosterLoader(tripID)
	}

	var out tripRosterData
	trip, err := s.CatalogRepo.GetTrip(nil, tripID)
	if err != nil {
		return out, err
	}
	out.Trip = trip

	members, err := s.MembershipRepo.ListByTrip(nil, tripID)
	if err != nil {
		return out, err
	}
	out.Members = members
	return out, nil
}

func buildStatementPDF(d creditStatementData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Extrato de Creditos", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "EXTRATO DE CREDITOS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Cliente : %s (#%d)", safe(d.Customer.Name, "-"), d.Customer.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Telefone: %s", safe(d.Customer.Phone, "-")))
	pdf.Ln(10)

	var totalOriginal, totalBalance int64
	for _, c := range d.Credits {
		totalOriginal += c.OriginalAmount
		totalBalance += c.AvailableBalance

		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Credito #%d  emitido em %s  [%s]", c.ID, utils.FormatDate(c.IssuedAt), c.Status))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, fmt.Sprintf("  Valor original: %s   Saldo: %s", utils.FormatReal(c.OriginalAmount), utils.FormatReal(c.AvailableBalance)))
		pdf.Ln(6)

		for _, u := range d.Usages[c.ID] {
			pdf.Cell(0, 6, fmt.Sprintf("  - viagem #%d passageiro #%d: %s em %s",
				u.TripID, u.BeneficiaryID, utils.FormatReal(u.AmountApplied), utils.FormatDate(u.LinkedAt)))
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Total emitido: %s   Saldo disponivel: %s",
		utils.FormatReal(totalOriginal), utils.FormatReal(totalBalance)))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Gerado em "+utils.FormatDateTime(utils.NowUTC()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "falha ao gerar PDF do extrato", Err: err}
	}
	filename := fmt.Sprintf("extrato-creditos-%d.pdf", d.Customer.ID)
	return buf.Bytes(), filename, nil
}

func buildRosterPDF(d tripRosterData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Lista de Passageiros", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "LISTA DE PASSAGEIROS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Viagem : %s (#%d)", safe(d.Trip.Name, "-"), d.Trip.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Destino: %s   Data: %s", safe(d.Trip.Destination, "-"), safe(d.Trip.DepartureDate, "-")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Passageiro                      Onibus   Credito        Status")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)

	for i, m := range d.Members {
		name := safe(m.PassengerName, fmt.Sprintf("passageiro #%d", m.PassengerID))
		pdf.Cell(0, 6, fmt.Sprintf("%2d. %-28s #%d   %s   %s",
			i+1, name, m.BusID, utils.FormatReal(m.CreditAmountApplied), m.PaymentStatus))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Total de passageiros: %d", len(d.Members)), "", "", false)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Gerado em "+utils.FormatDateTime(utils.NowUTC()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "falha ao gerar PDF da lista", Err: err}
	}
	filename := fmt.Sprintf("lista-passageiros-%d.pdf", d.Trip.ID)
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
