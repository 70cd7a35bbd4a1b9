package repositories

import (
	"database/sql"
	"time"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain/models"
)

type CreditRepository struct {
	DB *sql.DB
}

func (r CreditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CreditRepository) q(ex Execer) Execer {
	if ex != nil {
		return ex
	}
	return r.db()
}

const creditColumns = `id, owner_id, original_amount, available_balance, status, issued_at, COALESCE(notes,'')`

func scanCredit(row interface{ Scan(...any) error }) (models.Credit, error) {
	var c models.Credit
	err := row.Scan(&c.ID, &c.OwnerID, &c.OriginalAmount, &c.AvailableBalance, &c.Status, &c.IssuedAt, &c.Notes)
	return c, err
}

func (r CreditRepository) GetByID(ex Execer, id int64) (models.Credit, error) {
	return scanCredit(r.q(ex).QueryRow(`SELECT `+creditColumns+` FROM credits WHERE id=? LIMIT 1`, id))
}

// ListAvailableFIFO retorna os candidatos de consumo em ordem deterministica:
// issued_at crescente, empate resolvido por id. Saldo zero ja sai filtrado aqui.
func (r CreditRepository) ListAvailableFIFO(ex Execer, ownerID int64) ([]models.Credit, error) {
	rows, err := r.q(ex).Query(`
		SELECT `+creditColumns+`
		FROM credits
		WHERE owner_id=? AND available_balance > 0 AND status <> 'refunded'
		ORDER BY issued_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Credit{}
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r CreditRepository) ListByOwner(ex Execer, ownerID int64) ([]models.Credit, error) {
	rows, err := r.q(ex).Query(`
		SELECT `+creditColumns+`
		FROM credits
		WHERE owner_id=?
		ORDER BY issued_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Credit{}
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Debit abate o saldo via compare-and-swap: so aplica se o saldo observado
// ainda cobre o valor. Retorna false quando outro alocador ganhou a corrida.
// O status e recalculado na mesma instrucao (avaliacao esquerda->direita do MySQL
// garante que IF enxerga o saldo antigo).
func (r CreditRepository) Debit(ex Execer, creditID, amount int64) (bool, error) {
	res, err := r.q(ex).Exec(`
		UPDATE credits
		SET status = IF(available_balance - ? = 0, 'used', 'partially_used'),
		    available_balance = available_balance - ?
		WHERE id=? AND available_balance >= ?`,
		amount, amount, creditID, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Restore devolve saldo ao credito (reversao de usage). Retorna false se o
// credito sumiu -- o chamador trata como violacao de integridade.
func (r CreditRepository) Restore(ex Execer, creditID, amount int64) (bool, error) {
	res, err := r.q(ex).Exec(`
		UPDATE credits
		SET status = IF(available_balance + ? >= original_amount, 'available', 'partially_used'),
		    available_balance = available_balance + ?
		WHERE id=?`,
		amount, amount, creditID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r CreditRepository) Create(ex Execer, ownerID, amount int64, notes string, issuedAt time.Time) (int64, error) {
	res, err := r.q(ex).Exec(`
		INSERT INTO credits (owner_id, original_amount, available_balance, status, issued_at, notes)
		VALUES (?, ?, ?, 'available', ?, ?)`,
		ownerID, amount, amount, issuedAt, intdb.NullIfEmpty(notes))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkRefunded fecha o credito apos a retirada. O saldo fica como esta;
// a query FIFO ja exclui creditos refunded.
func (r CreditRepository) MarkRefunded(ex Execer, creditID int64) error {
	_, err := r.q(ex).Exec(`UPDATE credits SET status='refunded' WHERE id=?`, creditID)
	return err
}
