package services

import (
	"database/sql"
	"fmt"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// maxAllocationAttempts limita o retry quando dois alocadores disputam o mesmo
// credito. Apos esgotar, o conflito sobe como ConflictError (transiente).
const maxAllocationAttempts = 3

// AllocationService consome saldo de credito FIFO (issued_at, depois id) para
// financiar assentos, passagem opcional e passeios de um ou mais beneficiarios.
// Cada beneficiario roda em transacao propria: abortar no meio do lote preserva
// os beneficiarios ja commitados.
type AllocationService struct {
	DB             *sql.DB
	CreditRepo     repositories.CreditRepository
	UsageRepo      repositories.CreditUsageRepository
	MembershipRepo repositories.MembershipRepository
	CatalogRepo    repositories.CatalogRepository
	CustomerRepo   repositories.CustomerRepository
	Notifier       MembershipNotifier
	RequestID      string
}

func (s AllocationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type Beneficiary struct {
	PassengerID int64  `json:"passengerId"`
	Name        string `json:"name"`
	Discount    int64  `json:"discount"`
	IsFree      bool   `json:"isFree"`
}

type AllocationRequest struct {
	CustomerID    int64         `json:"customerId"`
	TripID        int64         `json:"tripId"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	TicketID      int64         `json:"ticketId"`
	TourIDs       []int64       `json:"tourIds"`
	BusID         int64         `json:"busId"`
}

// AllocationResult sempre volta de uma alocacao bem sucedida; saldo
// insuficiente nao e erro, vira Shortfall > 0 com as duas opcoes de resolucao.
type AllocationResult struct {
	PerBeneficiaryAmount int64                   `json:"perBeneficiaryAmount"`
	TotalRequired        int64                   `json:"totalRequired"`
	TotalApplied         int64                   `json:"totalApplied"`
	Shortfall            int64                   `json:"shortfall"`
	CreatedUsages        []models.CreditUsage    `json:"createdUsages"`
	CreatedMemberships   []models.TripMembership `json:"createdMemberships"`
	SkippedExisting      []int64                 `json:"skippedExisting"`
	ShortfallOptions     []ShortfallChoice       `json:"shortfallOptions,omitempty"`
}

type allocationPlan struct {
	trip       models.Trip
	charge     int64
	ticketID   int64
	ticketFare int64
	tourFares  map[int64]int64
	tourOrder  []int64
}

// owedBy e a divida real do beneficiario: o desconto abate o sub-razao da
// viagem antes de qualquer consumo de credito. Debitar mais do que isso
// seria gastar saldo do cliente contra uma divida que nao existe.
func (p allocationPlan) owedBy(b Beneficiary) int64 {
	tripDue := p.trip.Fare - b.Discount + p.ticketFare
	if tripDue < 0 {
		tripDue = 0
	}
	return tripDue + (p.charge - p.trip.Fare - p.ticketFare)
}

// Allocate valida tudo antes de qualquer escrita e depois processa os
// beneficiarios um a um, na ordem recebida.
func (s AllocationService) Allocate(req AllocationRequest) (AllocationResult, error) {
	var result AllocationResult

	if len(req.Beneficiaries) == 0 {
		return result, domain.ValidationError{Field: "beneficiaries", Msg: "nenhum beneficiario informado"}
	}
	if _, err := s.CustomerRepo.GetByID(nil, req.CustomerID); err != nil {
		return result, err
	}

	plan, err := s.buildPlan(req)
	if err != nil {
		return result, err
	}
	result.PerBeneficiaryAmount = plan.charge

	// pre-checagem de duplicidade: quem ja esta na viagem nao conta assento novo
	// nem recobranca (idempotencia na repeticao da chamada).
	newOnes := make([]Beneficiary, 0, len(req.Beneficiaries))
	for _, b := range req.Beneficiaries {
		if b.PassengerID <= 0 {
			return result, domain.ValidationError{Field: "beneficiaries", Msg: "passageiro invalido"}
		}
		_, exists, err := s.MembershipRepo.GetByTripPassenger(nil, req.TripID, b.PassengerID)
		if err != nil {
			return result, err
		}
		if exists {
			result.SkippedExisting = append(result.SkippedExisting, b.PassengerID)
			continue
		}
		newOnes = append(newOnes, b)
	}

	if err := s.checkBusCapacity(req.TripID, req.BusID, len(newOnes)); err != nil {
		return result, err
	}

	for _, b := range newOnes {
		if !b.IsFree {
			result.TotalRequired += plan.owedBy(b)
		}

		usages, membership, skipped, err := s.allocateBeneficiary(req, plan, b)
		if err != nil {
			// beneficiarios ja commitados permanecem validos; o lote e
			// transacional por beneficiario, nao como um todo.
			result.Shortfall = max(int64(0), result.TotalRequired-result.TotalApplied)
			return result, err
		}
		if skipped {
			result.SkippedExisting = append(result.SkippedExisting, b.PassengerID)
			if !b.IsFree {
				result.TotalRequired -= plan.owedBy(b)
			}
			continue
		}

		result.CreatedUsages = append(result.CreatedUsages, usages...)
		result.CreatedMemberships = append(result.CreatedMemberships, membership)
		result.TotalApplied += membership.CreditAmountApplied
		notifyAsync(s.Notifier, req.TripID, b.PassengerID)
	}

	result.Shortfall = max(int64(0), result.TotalRequired-result.TotalApplied)
	if result.Shortfall > 0 {
		result.ShortfallOptions = []ShortfallChoice{ChoiceRegisterNow, ChoiceLeavePending}
		utils.LogEvent(s.RequestID, "allocation", "shortfall_detected",
			fmt.Sprintf("trip_id=%d customer_id=%d faltam=%s", req.TripID, req.CustomerID, utils.FormatReal(result.Shortfall)))
	}
	return result, nil
}

func (s AllocationService) buildPlan(req AllocationRequest) (allocationPlan, error) {
	var plan allocationPlan

	trip, err := s.CatalogRepo.GetTrip(nil, req.TripID)
	if err != nil {
		return plan, err
	}
	plan.trip = trip

	if req.TicketID > 0 {
		tickets, err := s.CatalogRepo.ListTickets(nil, req.TripID)
		if err != nil {
			return plan, err
		}
		found := false
		for _, t := range tickets {
			if t.ID == req.TicketID {
				plan.ticketID = t.ID
				plan.ticketFare = t.Fare
				found = true
				break
			}
		}
		if !found {
			return plan, domain.ValidationError{Field: "ticket_id", Msg: "passagem nao pertence a viagem"}
		}
	}

	plan.tourFares = map[int64]int64{}
	if len(req.TourIDs) > 0 {
		tours, err := s.CatalogRepo.ListTours(nil, req.TripID)
		if err != nil {
			return plan, err
		}
		catalog := map[int64]int64{}
		for _, t := range tours {
			catalog[t.ID] = t.Fare
		}
		for _, id := range req.TourIDs {
			fare, ok := catalog[id]
			if !ok {
				return plan, domain.ValidationError{Field: "tour_ids", Msg: fmt.Sprintf("passeio %d nao pertence a viagem", id)}
			}
			if _, dup := plan.tourFares[id]; dup {
				continue
			}
			plan.tourFares[id] = fare
			plan.tourOrder = append(plan.tourOrder, id)
		}
	}

	plan.charge = trip.Fare + plan.ticketFare
	for _, id := range plan.tourOrder {
		plan.charge += plan.tourFares[id]
	}
	return plan, nil
}

func (s AllocationService) checkBusCapacity(tripID, busID int64, newSeats int) error {
	if busID <= 0 {
		return domain.ValidationError{Field: "bus_id", Msg: "onibus e obrigatorio"}
	}
	buses, err := s.CatalogRepo.ListBuses(nil, tripID)
	if err != nil {
		return err
	}
	for _, b := range buses {
		if b.ID != busID {
			continue
		}
		if b.FreeSeats < newSeats {
			return domain.ValidationError{Field: "bus_id",
				Msg: fmt.Sprintf("onibus lotado: %d assentos livres para %d passageiros novos", b.FreeSeats, newSeats)}
		}
		return nil
	}
	return domain.ValidationError{Field: "bus_id", Msg: "onibus nao pertence a viagem"}
}

// allocateBeneficiary tenta o consumo FIFO com retry limitado: quando o CAS de
// saldo perde a corrida, a transacao inteira volta e a lista de candidatos e
// relida do zero.
func (s AllocationService) allocateBeneficiary(req AllocationRequest, plan allocationPlan, b Beneficiary) ([]models.CreditUsage, models.TripMembership, bool, error) {
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		usages, membership, skipped, conflict, err := s.tryAllocateOnce(req, plan, b)
		if err != nil {
			return nil, models.TripMembership{}, false, err
		}
		if !conflict {
			return usages, membership, skipped, nil
		}
		utils.LogEvent(s.RequestID, "allocation", "retry",
			fmt.Sprintf("passenger_id=%d tentativa=%d saldo disputado", b.PassengerID, attempt))
	}
	return nil, models.TripMembership{}, false, domain.ConflictError{
		Resource: "credito",
		Msg:      "saldo disputado por alocacoes concorrentes, tente novamente",
	}
}

func (s AllocationService) tryAllocateOnce(req AllocationRequest, plan allocationPlan, b Beneficiary) (usages []models.CreditUsage, membership models.TripMembership, skipped, conflict bool, err error) {
	tx, err := s.db().Begin()
	if err != nil {
		return nil, membership, false, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// re-checagem dentro da tx: outra chamada pode ter inserido depois da
	// pre-checagem.
	_, exists, err := s.MembershipRepo.GetByTripPassenger(tx, req.TripID, b.PassengerID)
	if err != nil {
		return nil, membership, false, false, err
	}
	if exists {
		return nil, membership, true, false, nil
	}

	now := utils.NowUTC()
	applied := int64(0)
	originID := int64(0)
	owed := plan.owedBy(b)

	if !b.IsFree && owed > 0 {
		credits, err := s.CreditRepo.ListAvailableFIFO(tx, req.CustomerID)
		if err != nil {
			return nil, membership, false, false, err
		}

		remaining := owed
		for _, c := range credits {
			if remaining == 0 {
				break
			}
			take := min(remaining, c.AvailableBalance)
			ok, err := s.CreditRepo.Debit(tx, c.ID, take)
			if err != nil {
				return nil, membership, false, false, err
			}
			if !ok {
				// outro alocador gastou este credito entre a leitura e o CAS
				return nil, membership, false, true, nil
			}
			usageID, err := s.UsageRepo.Insert(tx, c.ID, req.TripID, b.PassengerID, take, now)
			if err != nil {
				return nil, membership, false, false, err
			}
			usages = append(usages, models.CreditUsage{
				ID:            usageID,
				CreditID:      c.ID,
				TripID:        req.TripID,
				BeneficiaryID: b.PassengerID,
				AmountApplied: take,
				LinkedAt:      now,
			})
			if originID == 0 {
				originID = c.ID
			}
			remaining -= take
		}
		applied = owed - remaining
	}

	tourDue := plan.charge - plan.trip.Fare - plan.ticketFare
	tripDue := plan.trip.Fare - b.Discount + plan.ticketFare
	if tripDue < 0 {
		tripDue = 0
	}
	breakdown := splitBreakdown(tripDue, tourDue, applied, 0, 0)

	membership = models.TripMembership{
		TripID:              req.TripID,
		PassengerID:         b.PassengerID,
		PassengerName:       utils.NormalizeSpace(b.Name),
		BusID:               req.BusID,
		FareAmount:          plan.trip.Fare,
		Discount:            b.Discount,
		TicketID:            plan.ticketID,
		TicketFare:          plan.ticketFare,
		PaidViaCredit:       applied > 0,
		CreditOriginID:      originID,
		CreditAmountApplied: applied,
		IsFree:              b.IsFree,
		PaymentStatus:       domain.ResolvePaymentStatus(breakdown, b.IsFree, plan.trip.IsCancelled()),
	}
	membershipID, err := s.MembershipRepo.Insert(tx, membership)
	if err != nil {
		return nil, models.TripMembership{}, false, false, err
	}
	membership.ID = membershipID

	for _, tourID := range plan.tourOrder {
		if err := s.MembershipRepo.InsertTour(tx, req.TripID, b.PassengerID, tourID, plan.tourFares[tourID]); err != nil {
			return nil, models.TripMembership{}, false, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, models.TripMembership{}, false, false, err
	}
	committed = true
	return usages, membership, false, false, nil
}
