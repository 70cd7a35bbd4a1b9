package repositories

import (
	"database/sql"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain/models"
)

type CreditUsageRepository struct {
	DB *sql.DB
}

func (r CreditUsageRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CreditUsageRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

const usageColumns = `id, credit_id, trip_id, beneficiary_id, amount_applied, linked_at`

func scanUsage(row interface{ Scan(...any) error }) (models.CreditUsage, error) {
	var u models.CreditUsage
	err := row.Scan(&u.ID, &u.CreditID, &u.TripID, &u.BeneficiaryID, &u.AmountApplied, &u.LinkedAt)
	return u, err
}

func (r CreditUsageRepository) GetByID(ex Execer, id int64) (models.CreditUsage, error) {
	return scanUsage(r.q(ex).QueryRow(`SELECT `+usageColumns+` FROM credit_usages WHERE id=? LIMIT 1`, id))
}

func (r CreditUsageRepository) Insert(ex Execer, creditID, tripID, beneficiaryID, amount int64, linkedAt time.Time) (int64, error) {
	res, err := r.q(ex).Exec(`
		INSERT INTO credit_usages (credit_id, trip_id, beneficiary_id, amount_applied, linked_at)
		VALUES (?, ?, ?, ?, ?)`,
		creditID, tripID, beneficiaryID, amount, linkedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r CreditUsageRepository) Delete(ex Execer, id int64) error {
	_, err := r.q(ex).Exec(`DELETE FROM credit_usages WHERE id=?`, id)
	return err
}

func (r CreditUsageRepository) ListByCredit(ex Execer, creditID int64) ([]models.CreditUsage, error) {
	return r.list(ex, `SELECT `+usageColumns+` FROM credit_usages WHERE credit_id=? ORDER BY id ASC`, creditID)
}

func (r CreditUsageRepository) ListByMembership(ex Execer, tripID, passengerID int64) ([]models.CreditUsage, error) {
	return r.list(ex, `SELECT `+usageColumns+` FROM credit_usages WHERE trip_id=? AND beneficiary_id=? ORDER BY id ASC`, tripID, passengerID)
}

// SumForMembership soma os usages ativos de um par (viagem, passageiro).
// Um passageiro pode ser financiado por mais de um credito.
func (r CreditUsageRepository) SumForMembership(ex Execer, tripID, passengerID int64) (int64, error) {
	var sum int64
	err := r.q(ex).QueryRow(`
		SELECT COALESCE(SUM(amount_applied), 0)
		FROM credit_usages
		WHERE trip_id=? AND beneficiary_id=?`, tripID, passengerID).Scan(&sum)
	return sum, err
}

func (r CreditUsageRepository) list(ex Execer, query string, args ...any) ([]models.CreditUsage, error) {
	rows, err := r.q(ex).Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CreditUsage{}
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
