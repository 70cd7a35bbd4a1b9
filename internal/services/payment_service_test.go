package services

import (
	"database/sql"
	"errors"
	"testing"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPaymentService(db *sql.DB) PaymentService {
	intconfig.DB = db
	return PaymentService{DB: db}
}

func TestRecordPaymentCompletesStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trip_memberships").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(9, 1, 42, "Joao", 5, 10000, 0, 0, 0, true, 3, 4000, false, "Pendente"))
	mock.ExpectExec("INSERT INTO payment_history").
		WillReturnResult(sqlmock.NewResult(300, 1))
	mock.ExpectQuery("FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	// o pagamento recem gravado ja entra na soma
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "trip").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(6000))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "tours").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM trips").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "destination", "departure_date", "fare", "status"}).
			AddRow(1, "Praia", "Maceio", "2026-01-10", 10000, "ativa"))
	mock.ExpectExec("UPDATE trip_memberships").
		WithArgs("PagoCompleto", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newPaymentService(db)
	m, err := svc.Record(9, models.CategoryTrip, 6000, "pix", "2026-04-01", "")
	if err != nil {
		t.Fatalf("record error: %v", err)
	}

	if m.PaymentStatus != domain.StatusPagoCompleto {
		t.Fatalf("expected %s, got %s", domain.StatusPagoCompleto, m.PaymentStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordPaymentAbortsWhenTripLookupFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trip_memberships").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(9, 1, 42, "Joao", 5, 10000, 0, 0, 0, true, 3, 4000, false, "Pendente"))
	mock.ExpectExec("INSERT INTO payment_history").
		WillReturnResult(sqlmock.NewResult(300, 1))
	mock.ExpectQuery("FROM membership_tours").WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "trip").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(6000))
	mock.ExpectQuery("FROM payment_history").WithArgs(int64(9), "tours").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	// sem saber se a viagem foi cancelada nao existe status correto a gravar:
	// o pagamento inteiro volta junto com a transacao
	mock.ExpectQuery("FROM trips").WithArgs(int64(1)).
		WillReturnError(errors.New("conexao perdida"))
	mock.ExpectRollback()

	svc := newPaymentService(db)
	if _, err := svc.Record(9, models.CategoryTrip, 6000, "pix", "2026-04-01", ""); err == nil {
		t.Fatalf("expected record to abort on trip lookup failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordPaymentValidatesInput(t *testing.T) {
	svc := PaymentService{}

	if _, err := svc.Record(0, models.CategoryTrip, 100, "pix", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for id, got %v", err)
	}
	if _, err := svc.Record(9, models.PaymentCategory("x"), 100, "pix", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for category, got %v", err)
	}
	if _, err := svc.Record(9, models.CategoryTrip, 0, "pix", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for amount, got %v", err)
	}
	if _, err := svc.Record(9, models.CategoryTrip, 100, "  ", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for method, got %v", err)
	}
}

func TestShortfallLeavePendingKeepsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectQuery("FROM trip_memberships").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(membershipCols).
			AddRow(9, 1, 42, "Joao", 5, 10000, 0, 0, 0, true, 3, 8000, false, "Pendente"))

	svc := ShortfallService{}
	resolution, err := svc.Resolve(9, ChoiceLeavePending, 0, "", "")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if resolution.State != StateResolved {
		t.Fatalf("expected resolved state, got %s", resolution.State)
	}
	if resolution.Membership.PaymentStatus != domain.StatusPendente {
		t.Fatalf("leave_pending must not change the status, got %s", resolution.Membership.PaymentStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShortfallRejectsUnknownChoice(t *testing.T) {
	svc := ShortfallService{}
	if _, err := svc.Resolve(9, ShortfallChoice("retry"), 0, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
