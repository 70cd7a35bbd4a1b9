package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain/models"
)

type MembershipRepository struct {
	DB *sql.DB
}

func (r MembershipRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r MembershipRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

const membershipColumns = `id, trip_id, passenger_id, COALESCE(passenger_name,''), bus_id,
	fare_amount, discount, COALESCE(ticket_id,0), ticket_fare, paid_via_credit,
	COALESCE(credit_origin_id,0), credit_amount_applied, is_free, payment_status`

func scanMembership(row interface{ Scan(...any) error }) (models.TripMembership, error) {
	var m models.TripMembership
	err := row.Scan(&m.ID, &m.TripID, &m.PassengerID, &m.PassengerName, &m.BusID,
		&m.FareAmount, &m.Discount, &m.TicketID, &m.TicketFare, &m.PaidViaCredit,
		&m.CreditOriginID, &m.CreditAmountApplied, &m.IsFree, &m.PaymentStatus)
	return m, err
}

func (r MembershipRepository) GetByID(ex Execer, id int64) (models.TripMembership, error) {
	return scanMembership(r.q(ex).QueryRow(`SELECT `+membershipColumns+` FROM trip_memberships WHERE id=? LIMIT 1`, id))
}

// GetByTripPassenger retorna (membership, existe, erro). Usado como guarda de
// duplicidade na alocacao e como alvo da reversao.
func (r MembershipRepository) GetByTripPassenger(ex Execer, tripID, passengerID int64) (models.TripMembership, bool, error) {
	m, err := scanMembership(r.q(ex).QueryRow(
		`SELECT `+membershipColumns+` FROM trip_memberships WHERE trip_id=? AND passenger_id=? LIMIT 1`,
		tripID, passengerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TripMembership{}, false, nil
		}
		return models.TripMembership{}, false, err
	}
	return m, true, nil
}

func (r MembershipRepository) Insert(ex Execer, m models.TripMembership) (int64, error) {
	res, err := r.q(ex).Exec(`
		INSERT INTO trip_memberships
			(trip_id, passenger_id, passenger_name, bus_id, fare_amount, discount,
			 ticket_id, ticket_fare, paid_via_credit, credit_origin_id,
			 credit_amount_applied, is_free, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TripID, m.PassengerID, m.PassengerName, m.BusID, m.FareAmount, m.Discount,
		intdb.NullIfZero(m.TicketID), m.TicketFare, m.PaidViaCredit, intdb.NullIfZero(m.CreditOriginID),
		m.CreditAmountApplied, m.IsFree, string(m.PaymentStatus))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateFunding reescreve os campos derivados do ledger apos uma reversao.
func (r MembershipRepository) UpdateFunding(ex Execer, m models.TripMembership) error {
	_, err := r.q(ex).Exec(`
		UPDATE trip_memberships
		SET credit_amount_applied=?, paid_via_credit=?, payment_status=?
		WHERE trip_id=? AND passenger_id=?`,
		m.CreditAmountApplied, m.PaidViaCredit, string(m.PaymentStatus), m.TripID, m.PassengerID)
	return err
}

func (r MembershipRepository) UpdateStatus(ex Execer, membershipID int64, status string) error {
	_, err := r.q(ex).Exec(`UPDATE trip_memberships SET payment_status=? WHERE id=?`, status, membershipID)
	return err
}

// Delete remove o passageiro da viagem junto com os passeios contratados.
func (r MembershipRepository) Delete(ex Execer, tripID, passengerID int64) error {
	if _, err := r.q(ex).Exec(`DELETE FROM membership_tours WHERE trip_id=? AND passenger_id=?`, tripID, passengerID); err != nil {
		return err
	}
	_, err := r.q(ex).Exec(`DELETE FROM trip_memberships WHERE trip_id=? AND passenger_id=?`, tripID, passengerID)
	return err
}

func (r MembershipRepository) ListByTrip(ex Execer, tripID int64) ([]models.TripMembership, error) {
	rows, err := r.q(ex).Query(`SELECT `+membershipColumns+` FROM trip_memberships WHERE trip_id=? ORDER BY passenger_name ASC, id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripMembership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r MembershipRepository) InsertTour(ex Execer, tripID, passengerID, tourID, fare int64) error {
	_, err := r.q(ex).Exec(`
		INSERT INTO membership_tours (trip_id, passenger_id, tour_id, fare)
		VALUES (?, ?, ?, ?)`, tripID, passengerID, tourID, fare)
	return err
}

// SumTourFares e o lado "devido" do sub-razao de passeios.
func (r MembershipRepository) SumTourFares(ex Execer, tripID, passengerID int64) (int64, error) {
	var sum int64
	err := r.q(ex).QueryRow(`
		SELECT COALESCE(SUM(fare), 0)
		FROM membership_tours
		WHERE trip_id=? AND passenger_id=?`, tripID, passengerID).Scan(&sum)
	return sum, err
}

func (r MembershipRepository) ListTours(ex Execer, tripID, passengerID int64) ([]models.MembershipTour, error) {
	rows, err := r.q(ex).Query(`
		SELECT id, trip_id, passenger_id, tour_id, fare
		FROM membership_tours
		WHERE trip_id=? AND passenger_id=? ORDER BY id ASC`, tripID, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MembershipTour{}
	for rows.Next() {
		var t models.MembershipTour
		if err := rows.Scan(&t.ID, &t.TripID, &t.PassengerID, &t.TourID, &t.Fare); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
