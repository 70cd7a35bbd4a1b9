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

// PaymentService registra pagamentos avulsos (dinheiro/PIX/...) no historico e
// recalcula o status do membership a partir do breakdown resultante.
type PaymentService struct {
	DB             *sql.DB
	MembershipRepo repositories.MembershipRepository
	PaymentRepo    repositories.PaymentHistoryRepository
	CatalogRepo    repositories.CatalogRepository
	Notifier       MembershipNotifier
	RequestID      string
}

func (s PaymentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s PaymentService) Record(membershipID int64, category models.PaymentCategory, amount int64, method, paidAt, notes string) (models.TripMembership, error) {
	if membershipID <= 0 {
		return models.TripMembership{}, domain.ValidationError{Field: "membership_id", Msg: "id invalido"}
	}
	if !category.Valid() {
		return models.TripMembership{}, domain.ValidationError{Field: "category", Msg: "categoria deve ser trip ou tours"}
	}
	if amount <= 0 {
		return models.TripMembership{}, domain.ValidationError{Field: "amount", Msg: "valor deve ser positivo"}
	}
	method = utils.TrimOrEmpty(method)
	if method == "" {
		return models.TripMembership{}, domain.ValidationError{Field: "method", Msg: "forma de pagamento e obrigatoria"}
	}
	if paidAt == "" {
		paidAt = utils.FormatDate(utils.NowUTC())
	} else if _, err := utils.ParseDate(paidAt); err != nil {
		return models.TripMembership{}, domain.ValidationError{Field: "paid_at", Msg: "data deve estar no formato AAAA-MM-DD", Err: err}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.TripMembership{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := s.MembershipRepo.GetByID(tx, membershipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TripMembership{}, domain.NotFoundError{Resource: "passageiro da viagem", Err: err}
		}
		return models.TripMembership{}, err
	}

	if _, err := s.PaymentRepo.Record(tx, models.PaymentRecord{
		MembershipID: membershipID,
		Category:     category,
		Amount:       amount,
		Method:       method,
		PaidAt:       paidAt,
		Notes:        notes,
	}); err != nil {
		return models.TripMembership{}, err
	}

	calc := BreakdownCalc{MembershipRepo: s.MembershipRepo, PaymentRepo: s.PaymentRepo}
	breakdown, err := calc.ForMembership(tx, m, m.CreditAmountApplied)
	if err != nil {
		return models.TripMembership{}, err
	}

	trip, err := s.CatalogRepo.GetTrip(tx, m.TripID)
	if err != nil {
		return models.TripMembership{}, err
	}
	m.PaymentStatus = domain.ResolvePaymentStatus(breakdown, m.IsFree, trip.IsCancelled())

	if err := s.MembershipRepo.UpdateStatus(tx, m.ID, string(m.PaymentStatus)); err != nil {
		return models.TripMembership{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.TripMembership{}, err
	}
	committed = true

	notifyAsync(s.Notifier, m.TripID, m.PassengerID)
	utils.LogEvent(s.RequestID, "payment", "record",
		fmt.Sprintf("membership_id=%d categoria=%s valor=%s status=%s", membershipID, category, utils.FormatReal(amount), m.PaymentStatus))
	return m, nil
}
