package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type CustomerRepository struct {
	DB *sql.DB
}

func (r CustomerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CustomerRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

func (r CustomerRepository) GetByID(ex Execer, id int64) (models.Customer, error) {
	var c models.Customer
	err := r.q(ex).QueryRow(`
		SELECT id, name, COALESCE(phone,''), COALESCE(email,'')
		FROM customers WHERE id=? LIMIT 1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, domain.NotFoundError{Resource: "cliente", Err: err}
		}
		return c, err
	}
	return c, nil
}
