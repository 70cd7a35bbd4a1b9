package repositories

import (
	"database/sql"

	intconfig "backend/internal/config"
	"backend/internal/domain/models"
)

type PaymentHistoryRepository struct {
	DB *sql.DB
}

func (r PaymentHistoryRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PaymentHistoryRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

func (r PaymentHistoryRepository) Record(ex Execer, p models.PaymentRecord) (int64, error) {
	res, err := r.q(ex).Exec(`
		INSERT INTO payment_history (membership_id, category, amount, method, paid_at, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.MembershipID, string(p.Category), p.Amount, p.Method, p.PaidAt, p.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SumByCategory alimenta o lado "pago" do breakdown para uma categoria.
func (r PaymentHistoryRepository) SumByCategory(ex Execer, membershipID int64, category models.PaymentCategory) (int64, error) {
	var sum int64
	err := r.q(ex).QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_history
		WHERE membership_id=? AND category=?`, membershipID, string(category)).Scan(&sum)
	return sum, err
}

func (r PaymentHistoryRepository) ListByMembership(ex Execer, membershipID int64) ([]models.PaymentRecord, error) {
	rows, err := r.q(ex).Query(`
		SELECT id, membership_id, category, amount, COALESCE(method,''), COALESCE(paid_at,''), COALESCE(notes,'')
		FROM payment_history
		WHERE membership_id=? ORDER BY id ASC`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentRecord{}
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.MembershipID, &p.Category, &p.Amount, &p.Method, &p.PaidAt, &p.Notes); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
