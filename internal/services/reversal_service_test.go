package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

var usageCols = []string{"id", "credit_id", "trip_id", "beneficiary_id", "amount_applied", "linked_at"}

func newReversalService(db *sql.DB) ReversalService {
	intconfig.DB = db
	return ReversalService{DB: db}
}

func expectUsageFound(mock sqlmock.Sqlmock, usageID, creditID, tripID, passengerID, amount int64) {
	mock.ExpectQuery("FROM credit_usages").WithArgs(usageID).
		WillReturnRows(sqlmock.NewRows(usageCols).
			AddRow(usageID, creditID, tripID, passengerID, amount, time.Now()))
}

func expectCreditFound(mock sqlmock.Sqlmock, creditID, ownerID, original, balance int64, status string) {
	mock.ExpectQuery("FROM credits").WithArgs(creditID).
		WillReturnRows(sqlmock.NewRows(creditCols).
			AddRow(creditID, ownerID, original, balance, status, time.Now(), ""))
}

func expectMembershipFound(mock sqlmock.Sqlmock, tripID, passengerID, fare, applied int64) {
	mock.ExpectQuery("FROM trip_memberships").WithArgs(tripID, passengerID).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(9, tripID, passengerID, "Joao", 5, fare, 0, 0, 0, true, 3, applied, false, "PagoCompleto"))
}

func TestReverseKeepsMembershipWhenFareStillCovered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectUsageFound(mock, 100, 3, 1, 42, 5000)
	expectCreditFound(mock, 3, 7, 30000, 10000, "partially_used")
	mock.ExpectExec("UPDATE credits").
		WithArgs(int64(5000), int64(5000), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM credit_usages").WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// outro credito ainda banca a tarifa inteira
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10000))
	expectMembershipFound(mock, 1, 42, 10000, 15000)
	mock.ExpectQuery("FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "trip").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "tours").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM trips").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "destination", "departure_date", "fare", "status"}).
			AddRow(1, "Praia", "Maceio", "2026-01-10", 10000, "ativa"))
	mock.ExpectExec("UPDATE trip_memberships").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newReversalService(db)
	result, err := svc.Reverse(100)
	if err != nil {
		t.Fatalf("reverse error: %v", err)
	}

	if result.RefundedAmount != 5000 {
		t.Fatalf("expected 5000 refunded, got %d", result.RefundedAmount)
	}
	if result.MembershipRemoved {
		t.Fatalf("membership must survive while the fare is covered")
	}
	if result.MembershipUpdated == nil || result.MembershipUpdated.CreditAmountApplied != 10000 {
		t.Fatalf("membership funding not recalculated: %+v", result.MembershipUpdated)
	}
	if result.MembershipUpdated.PaymentStatus != domain.StatusPagoCompleto {
		t.Fatalf("expected %s, got %s", domain.StatusPagoCompleto, result.MembershipUpdated.PaymentStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReverseRemovesMembershipWhenFareNoLongerCovered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectUsageFound(mock, 100, 3, 1, 42, 8000)
	expectCreditFound(mock, 3, 7, 30000, 10000, "partially_used")
	mock.ExpectExec("UPDATE credits").
		WithArgs(int64(8000), int64(8000), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM credit_usages").WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// sobra menos que a tarifa: passageiro sai da viagem
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2000))
	expectMembershipFound(mock, 1, 42, 10000, 10000)
	mock.ExpectExec("DELETE FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM trip_memberships").WithArgs(int64(1), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newReversalService(db)
	result, err := svc.Reverse(100)
	if err != nil {
		t.Fatalf("reverse error: %v", err)
	}

	if !result.MembershipRemoved {
		t.Fatalf("membership should be removed when remaining funding is below the fare")
	}
	if result.MembershipUpdated != nil {
		t.Fatalf("removed membership must not come back updated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReverseAbortsWhenTripLookupFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectUsageFound(mock, 100, 3, 1, 42, 5000)
	expectCreditFound(mock, 3, 7, 30000, 10000, "partially_used")
	mock.ExpectExec("UPDATE credits").
		WithArgs(int64(5000), int64(5000), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM credit_usages").WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10000))
	expectMembershipFound(mock, 1, 42, 10000, 15000)
	mock.ExpectQuery("FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "trip").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "tours").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	// falha de banco na leitura da viagem nao pode virar "nao cancelada":
	// a transacao inteira volta, nada do estorno persiste
	mock.ExpectQuery("FROM trips").WithArgs(int64(1)).
		WillReturnError(errors.New("conexao perdida"))
	mock.ExpectRollback()

	svc := newReversalService(db)
	_, err = svc.Reverse(100)
	if err == nil {
		t.Fatalf("expected reverse to abort on trip lookup failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReverseOrphanUsageIsIntegrityError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectUsageFound(mock, 100, 3, 1, 42, 5000)
	mock.ExpectQuery("FROM credits").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(creditCols))
	mock.ExpectRollback()

	svc := newReversalService(db)
	_, err = svc.Reverse(100)
	if !domain.IsIntegrity(err) {
		t.Fatalf("expected IntegrityError for orphan usage, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReverseUnknownUsageIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(usageCols))
	mock.ExpectRollback()

	svc := newReversalService(db)
	_, err = svc.Reverse(999)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithdrawCreditAbortsWholeBatchOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectCreditFound(mock, 3, 7, 30000, 10000, "partially_used")
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(usageCols).
			AddRow(100, 3, 1, 42, 8000, time.Now()).
			AddRow(101, 3, 2, 42, 12000, time.Now()))

	// primeiro usage reverte limpo (passageiro sai da viagem)
	expectUsageFound(mock, 100, 3, 1, 42, 8000)
	expectCreditFound(mock, 3, 7, 30000, 10000, "partially_used")
	mock.ExpectExec("UPDATE credits").
		WithArgs(int64(8000), int64(8000), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM credit_usages").WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	expectMembershipFound(mock, 1, 42, 10000, 8000)
	mock.ExpectExec("DELETE FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM trip_memberships").WithArgs(int64(1), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// segundo usage sumiu no meio do caminho: a retirada inteira aborta
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows(usageCols))
	mock.ExpectRollback()

	svc := newReversalService(db)
	_, err = svc.WithdrawCredit(3)
	if err == nil {
		t.Fatalf("expected withdraw to abort, got success")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError from failed step, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithdrawAlreadyRefundedCreditConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectCreditFound(mock, 3, 7, 30000, 0, "refunded")
	mock.ExpectRollback()

	svc := newReversalService(db)
	_, err = svc.WithdrawCredit(3)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPreviewReverseDoesNotWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectUsageFound(mock, 100, 3, 1, 42, 5000)
	mock.ExpectQuery("FROM credit_usages").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(12000))
	expectMembershipFound(mock, 1, 42, 10000, 12000)

	svc := newReversalService(db)
	impact, err := svc.PreviewReverse(100)
	if err != nil {
		t.Fatalf("preview error: %v", err)
	}

	if impact.RefundedAmount != 5000 || impact.RemainingApplied != 7000 {
		t.Fatalf("unexpected impact: %+v", impact)
	}
	if !impact.MembershipRemoved {
		t.Fatalf("7000 below a 10000 fare must flag removal")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
