package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

// CatalogRepository atende as leituras de catalogo: viagens, passeios,
// passagens e capacidade de onibus. Somente leitura para os engines.
type CatalogRepository struct {
	DB *sql.DB
}

func (r CatalogRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CatalogRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

func (r CatalogRepository) GetTrip(ex Execer, tripID int64) (models.Trip, error) {
	var t models.Trip
	err := r.q(ex).QueryRow(`
		SELECT id, name, COALESCE(destination,''), COALESCE(departure_date,''), fare, COALESCE(status,'ativa')
		FROM trips WHERE id=? LIMIT 1`, tripID).
		Scan(&t.ID, &t.Name, &t.Destination, &t.DepartureDate, &t.Fare, &t.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, domain.NotFoundError{Resource: "viagem", Err: err}
		}
		return t, err
	}
	return t, nil
}

func (r CatalogRepository) ListTrips(ex Execer) ([]models.Trip, error) {
	rows, err := r.q(ex).Query(`
		SELECT id, name, COALESCE(destination,''), COALESCE(departure_date,''), fare, COALESCE(status,'ativa')
		FROM trips ORDER BY departure_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.Destination, &t.DepartureDate, &t.Fare, &t.Status); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r CatalogRepository) ListTours(ex Execer, tripID int64) ([]models.Tour, error) {
	rows, err := r.q(ex).Query(`SELECT id, trip_id, name, fare FROM tours WHERE trip_id=? ORDER BY id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Tour{}
	for rows.Next() {
		var t models.Tour
		if err := rows.Scan(&t.ID, &t.TripID, &t.Name, &t.Fare); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r CatalogRepository) ListTickets(ex Execer, tripID int64) ([]models.Ticket, error) {
	rows, err := r.q(ex).Query(`SELECT id, trip_id, name, fare FROM tickets WHERE trip_id=? ORDER BY id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.TripID, &t.Name, &t.Fare); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListBuses devolve os onibus da viagem com os assentos livres ja calculados
// (assentos menos memberships ativos no onibus).
func (r CatalogRepository) ListBuses(ex Execer, tripID int64) ([]models.Bus, error) {
	rows, err := r.q(ex).Query(`
		SELECT b.id, b.trip_id, b.name, b.seats, b.seats - COUNT(m.id) AS free_seats
		FROM buses b
		LEFT JOIN trip_memberships m ON m.bus_id = b.id
		WHERE b.trip_id=?
		GROUP BY b.id, b.trip_id, b.name, b.seats
		ORDER BY b.id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.TripID, &b.Name, &b.Seats, &b.FreeSeats); err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
