package repositories

import "database/sql"

// Execer abstrai *sql.DB e *sql.Tx. Os engines passam a transacao em andamento;
// leituras avulsas passam nil e o repo cai no pool global.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
