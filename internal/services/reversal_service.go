package services

import (
	"database/sql"
	"errors"
	"fmt"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// ReversalService desfaz usages de credito: devolve saldo, apaga o vinculo e
// recalcula (ou remove) o membership afetado. O escopo da decisao e local ao
// par (viagem, passageiro); memberships irmaos financiados pelo mesmo credito
// nao sao tocados.
type ReversalService struct {
	DB             *sql.DB
	CreditRepo     repositories.CreditRepository
	UsageRepo      repositories.CreditUsageRepository
	MembershipRepo repositories.MembershipRepository
	CatalogRepo    repositories.CatalogRepository
	PaymentRepo    repositories.PaymentHistoryRepository
	Notifier       MembershipNotifier
	RequestID      string
}

func (s ReversalService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReversalService) calc() BreakdownCalc {
	return BreakdownCalc{MembershipRepo: s.MembershipRepo, PaymentRepo: s.PaymentRepo}
}

type ReversalResult struct {
	RefundedAmount    int64                  `json:"refundedAmount"`
	MembershipRemoved bool                   `json:"membershipRemoved"`
	MembershipUpdated *models.TripMembership `json:"membershipUpdated"`
}

// ReversalImpact e o preview mostrado antes da confirmacao de uma exclusao.
type ReversalImpact struct {
	UsageID           int64 `json:"usageId"`
	RefundedAmount    int64 `json:"refundedAmount"`
	RemainingApplied  int64 `json:"remainingApplied"`
	MembershipRemoved bool  `json:"membershipRemoved"`
}

// Reverse desfaz um usage em uma unica transacao atomica.
func (s ReversalService) Reverse(usageID int64) (ReversalResult, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return ReversalResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, tripID, passengerID, err := s.reverseUsageTx(tx, usageID)
	if err != nil {
		return ReversalResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return ReversalResult{}, err
	}
	committed = true

	notifyAsync(s.Notifier, tripID, passengerID)
	utils.LogEvent(s.RequestID, "reversal", "reverse",
		fmt.Sprintf("usage_id=%d devolvido=%s removido=%v", usageID, utils.FormatReal(res.RefundedAmount), res.MembershipRemoved))
	return res, nil
}

// PreviewReverse calcula o impacto sem escrever nada.
func (s ReversalService) PreviewReverse(usageID int64) (ReversalImpact, error) {
	usage, err := s.UsageRepo.GetByID(nil, usageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReversalImpact{}, domain.NotFoundError{Resource: "uso de credito", Err: err}
		}
		return ReversalImpact{}, err
	}

	sum, err := s.UsageRepo.SumForMembership(nil, usage.TripID, usage.BeneficiaryID)
	if err != nil {
		return ReversalImpact{}, err
	}
	remaining := sum - usage.AmountApplied

	impact := ReversalImpact{
		UsageID:          usageID,
		RefundedAmount:   usage.AmountApplied,
		RemainingApplied: remaining,
	}

	m, found, err := s.MembershipRepo.GetByTripPassenger(nil, usage.TripID, usage.BeneficiaryID)
	if err != nil {
		return ReversalImpact{}, err
	}
	if found {
		impact.MembershipRemoved = remaining == 0 || remaining < m.TripFareOwed()
	}
	return impact, nil
}

type WithdrawResult struct {
	CreditID       int64 `json:"creditId"`
	ReversedUsages int   `json:"reversedUsages"`
	RefundedTotal  int64 `json:"refundedTotal"`
}

// WithdrawCredit estorna o credito inteiro: todo usage que ele banca e
// revertido dentro de UMA transacao. Qualquer falha individual aborta a
// retirada completa -- reversao parcial dos usages de um credito e violacao
// de invariante, nao sucesso parcial.
func (s ReversalService) WithdrawCredit(creditID int64) (WithdrawResult, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return WithdrawResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	credit, err := s.CreditRepo.GetByID(tx, creditID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WithdrawResult{}, domain.NotFoundError{Resource: "credito", Err: err}
		}
		return WithdrawResult{}, err
	}
	if credit.Status == models.CreditRefunded {
		return WithdrawResult{}, domain.ConflictError{Resource: "credito", Msg: "credito ja retirado"}
	}

	usages, err := s.UsageRepo.ListByCredit(tx, creditID)
	if err != nil {
		return WithdrawResult{}, err
	}

	result := WithdrawResult{CreditID: creditID}
	type pair struct{ trip, passenger int64 }
	touched := []pair{}

	for _, u := range usages {
		res, tripID, passengerID, err := s.reverseUsageTx(tx, u.ID)
		if err != nil {
			return WithdrawResult{}, err
		}
		result.ReversedUsages++
		result.RefundedTotal += res.RefundedAmount
		touched = append(touched, pair{tripID, passengerID})
	}

	if err := s.CreditRepo.MarkRefunded(tx, creditID); err != nil {
		return WithdrawResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return WithdrawResult{}, err
	}
	committed = true

	for _, p := range touched {
		notifyAsync(s.Notifier, p.trip, p.passenger)
	}
	utils.LogEvent(s.RequestID, "reversal", "withdraw_credit",
		fmt.Sprintf("credit_id=%d usages=%d devolvido=%s", creditID, result.ReversedUsages, utils.FormatReal(result.RefundedTotal)))
	return result, nil
}

// reverseUsageTx executa os passos de reversao dentro da transacao do chamador.
func (s ReversalService) reverseUsageTx(tx repositories.Execer, usageID int64) (ReversalResult, int64, int64, error) {
	var res ReversalResult

	usage, err := s.UsageRepo.GetByID(tx, usageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, 0, 0, domain.NotFoundError{Resource: "uso de credito", Err: err}
		}
		return res, 0, 0, err
	}

	// usage orfao e violacao de integridade: aborta, nunca ignora em silencio.
	if _, err := s.CreditRepo.GetByID(tx, usage.CreditID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, 0, 0, domain.IntegrityError{Resource: "credito",
				Msg: fmt.Sprintf("usage %d aponta para credito %d inexistente", usage.ID, usage.CreditID)}
		}
		return res, 0, 0, err
	}

	ok, err := s.CreditRepo.Restore(tx, usage.CreditID, usage.AmountApplied)
	if err != nil {
		return res, 0, 0, err
	}
	if !ok {
		return res, 0, 0, domain.IntegrityError{Resource: "credito",
			Msg: fmt.Sprintf("falha ao devolver saldo ao credito %d", usage.CreditID)}
	}

	if err := s.UsageRepo.Delete(tx, usage.ID); err != nil {
		return res, 0, 0, err
	}
	res.RefundedAmount = usage.AmountApplied

	remaining, err := s.UsageRepo.SumForMembership(tx, usage.TripID, usage.BeneficiaryID)
	if err != nil {
		return res, 0, 0, err
	}

	m, found, err := s.MembershipRepo.GetByTripPassenger(tx, usage.TripID, usage.BeneficiaryID)
	if err != nil {
		return res, 0, 0, err
	}
	if !found {
		return res, usage.TripID, usage.BeneficiaryID, nil
	}

	// passageiro cujo financiamento restante nao cobre nem a tarifa sai da
	// viagem; ninguem fica "meio pago, ainda sentado".
	if remaining == 0 || remaining < m.TripFareOwed() {
		if err := s.MembershipRepo.Delete(tx, usage.TripID, usage.BeneficiaryID); err != nil {
			return res, 0, 0, err
		}
		res.MembershipRemoved = true
		return res, usage.TripID, usage.BeneficiaryID, nil
	}

	m.CreditAmountApplied = remaining
	m.PaidViaCredit = remaining > 0

	breakdown, err := s.calc().ForMembership(tx, m, remaining)
	if err != nil {
		return res, 0, 0, err
	}
	trip, err := s.CatalogRepo.GetTrip(tx, m.TripID)
	if err != nil {
		return res, 0, 0, err
	}
	m.PaymentStatus = domain.ResolvePaymentStatus(breakdown, m.IsFree, trip.IsCancelled())

	if err := s.MembershipRepo.UpdateFunding(tx, m); err != nil {
		return res, 0, 0, err
	}
	res.MembershipUpdated = &m
	return res, usage.TripID, usage.BeneficiaryID, nil
}
