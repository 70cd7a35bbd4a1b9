package db

import (
	"database/sql"
	"log"
)

// statements de bootstrap; idempotentes, rodam a cada subida do servidor.
var schemaStatements = map[string]string{
	"customers": `
		CREATE TABLE IF NOT EXISTS customers (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(40) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT ''
		)`,
	"trips": `
		CREATE TABLE IF NOT EXISTS trips (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			destination VARCHAR(255) NOT NULL DEFAULT '',
			departure_date VARCHAR(20) NOT NULL DEFAULT '',
			fare BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(30) NOT NULL DEFAULT 'ativa'
		)`,
	"tours": `
		CREATE TABLE IF NOT EXISTS tours (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			fare BIGINT NOT NULL DEFAULT 0,
			KEY idx_tours_trip (trip_id)
		)`,
	"tickets": `
		CREATE TABLE IF NOT EXISTS tickets (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			fare BIGINT NOT NULL DEFAULT 0,
			KEY idx_tickets_trip (trip_id)
		)`,
	"buses": `
		CREATE TABLE IF NOT EXISTS buses (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			name VARCHAR(100) NOT NULL,
			seats INT NOT NULL DEFAULT 0,
			KEY idx_buses_trip (trip_id)
		)`,
	"credits": `
		CREATE TABLE IF NOT EXISTS credits (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			owner_id BIGINT NOT NULL,
			original_amount BIGINT NOT NULL,
			available_balance BIGINT NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'available',
			issued_at DATETIME NOT NULL,
			notes VARCHAR(255) NOT NULL DEFAULT '',
			KEY idx_credits_owner (owner_id, issued_at)
		)`,
	"credit_usages": `
		CREATE TABLE IF NOT EXISTS credit_usages (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			credit_id BIGINT NOT NULL,
			trip_id BIGINT NOT NULL,
			beneficiary_id BIGINT NOT NULL,
			amount_applied BIGINT NOT NULL,
			linked_at DATETIME NOT NULL,
			KEY idx_usages_credit (credit_id),
			KEY idx_usages_membership (trip_id, beneficiary_id)
		)`,
	"trip_memberships": `
		CREATE TABLE IF NOT EXISTS trip_memberships (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			passenger_id BIGINT NOT NULL,
			passenger_name VARCHAR(255) NOT NULL DEFAULT '',
			bus_id BIGINT NOT NULL,
			fare_amount BIGINT NOT NULL DEFAULT 0,
			discount BIGINT NOT NULL DEFAULT 0,
			ticket_id BIGINT NULL,
			ticket_fare BIGINT NOT NULL DEFAULT 0,
			paid_via_credit TINYINT(1) NOT NULL DEFAULT 0,
			credit_origin_id BIGINT NULL,
			credit_amount_applied BIGINT NOT NULL DEFAULT 0,
			is_free TINYINT(1) NOT NULL DEFAULT 0,
			payment_status VARCHAR(30) NOT NULL DEFAULT 'Pendente',
			UNIQUE KEY uq_membership (trip_id, passenger_id),
			KEY idx_membership_bus (bus_id)
		)`,
	"membership_tours": `
		CREATE TABLE IF NOT EXISTS membership_tours (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			passenger_id BIGINT NOT NULL,
			tour_id BIGINT NOT NULL,
			fare BIGINT NOT NULL DEFAULT 0,
			KEY idx_mtours_membership (trip_id, passenger_id)
		)`,
	"payment_history": `
		CREATE TABLE IF NOT EXISTS payment_history (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			membership_id BIGINT NOT NULL,
			category VARCHAR(10) NOT NULL,
			amount BIGINT NOT NULL,
			method VARCHAR(40) NOT NULL DEFAULT '',
			paid_at VARCHAR(20) NOT NULL DEFAULT '',
			notes VARCHAR(255) NOT NULL DEFAULT '',
			KEY idx_payment_membership (membership_id)
		)`,
	"users": `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(40) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(30) NOT NULL DEFAULT 'user',
			status VARCHAR(30) NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE KEY uq_users_email (email),
			UNIQUE KEY uq_users_username (username)
		)`,
}

// EnsureSchema cria as tabelas que ainda nao existem.
func EnsureSchema(database *sql.DB) error {
	for table, stmt := range schemaStatements {
		existed := HasTable(database, table)
		if _, err := database.Exec(stmt); err != nil {
			return err
		}
		if !existed {
			log.Printf("[SCHEMA] tabela criada: %s", table)
		}
	}

	// bancos criados antes do suporte a brinde nao tem a coluna is_free
	if HasTable(database, "trip_memberships") && !HasColumn(database, "trip_memberships", "is_free") {
		if _, err := database.Exec(`ALTER TABLE trip_memberships ADD COLUMN is_free TINYINT(1) NOT NULL DEFAULT 0`); err != nil {
			return err
		}
		log.Printf("[SCHEMA] coluna adicionada: trip_memberships.is_free")
	}
	return nil
}
