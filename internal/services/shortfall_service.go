package services

import (
	"database/sql"
	"errors"
	"fmt"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// Maquina de estados do shortfall:
// Calculating -> ShortfallDetected -> {RegisterNow | LeavePending} -> Resolved.
// A alocacao ja commitou a cobertura conseguida; aqui so se decide o deficit.
type ShortfallState string

const (
	StateCalculating       ShortfallState = "calculating"
	StateShortfallDetected ShortfallState = "shortfall_detected"
	StateResolved          ShortfallState = "resolved"
)

type ShortfallChoice string

const (
	ChoiceRegisterNow  ShortfallChoice = "register_now"
	ChoiceLeavePending ShortfallChoice = "leave_pending"
)

type ShortfallService struct {
	MembershipRepo repositories.MembershipRepository
	PaymentSvc     PaymentService
	RequestID      string
}

type ShortfallResolution struct {
	State      ShortfallState        `json:"state"`
	Choice     ShortfallChoice       `json:"choice"`
	Membership models.TripMembership `json:"membership"`
}

// Resolve e a decisao one-shot do chamador sobre um deficit de alocacao.
// RegisterNow registra o pagamento avulso (categoria trip) e recalcula o
// status; LeavePending aceita o status parcial como esta. Nao ha retry
// automatico.
func (s ShortfallService) Resolve(membershipID int64, choice ShortfallChoice, amount int64, method, paidAt string) (ShortfallResolution, error) {
	switch choice {
	case ChoiceRegisterNow:
		m, err := s.PaymentSvc.Record(membershipID, models.CategoryTrip, amount, method, paidAt, "cobertura de shortfall")
		if err != nil {
			return ShortfallResolution{}, err
		}
		utils.LogEvent(s.RequestID, "shortfall", "register_now",
			fmt.Sprintf("membership_id=%d valor=%s status=%s", membershipID, utils.FormatReal(amount), m.PaymentStatus))
		return ShortfallResolution{State: StateResolved, Choice: choice, Membership: m}, nil

	case ChoiceLeavePending:
		m, err := s.MembershipRepo.GetByID(nil, membershipID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ShortfallResolution{}, domain.NotFoundError{Resource: "passageiro da viagem", Err: err}
			}
			return ShortfallResolution{}, err
		}
		utils.LogEvent(s.RequestID, "shortfall", "leave_pending",
			fmt.Sprintf("membership_id=%d status=%s", membershipID, m.PaymentStatus))
		return ShortfallResolution{State: StateResolved, Choice: choice, Membership: m}, nil

	default:
		return ShortfallResolution{}, domain.ValidationError{Field: "choice",
			Msg: "escolha deve ser register_now ou leave_pending"}
	}
}
