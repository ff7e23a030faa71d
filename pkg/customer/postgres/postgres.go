// Package postgres implements a PostgreSQL-backed customer repository.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"customerd/pkg/customer"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Repository persists customers in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository. The caller must ensure the database
// has a customers table:
// CREATE TABLE IF NOT EXISTS customers (pos BIGSERIAL, guid TEXT PRIMARY KEY, first_name TEXT, last_name TEXT, email TEXT, address TEXT);
// The pos column keeps List in insertion order.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new customer. A duplicate guid maps to customer.ErrExists.
func (r *Repository) Create(ctx context.Context, c customer.Customer) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (guid,first_name,last_name,email,address) VALUES ($1,$2,$3,$4,$5)",
		c.GUID, c.FirstName, c.LastName, c.Email, c.Address)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return customer.ErrExists
	}
	return err
}

// Get retrieves a customer by guid.
func (r *Repository) Get(ctx context.Context, guid string) (customer.Customer, error) {
	var c customer.Customer
	err := r.db.QueryRowContext(ctx,
		"SELECT guid,first_name,last_name,email,address FROM customers WHERE guid=$1", guid).
		Scan(&c.GUID, &c.FirstName, &c.LastName, &c.Email, &c.Address)
	if err == sql.ErrNoRows {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, err
}

// List fetches all customers in insertion order.
func (r *Repository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT guid,first_name,last_name,email,address FROM customers ORDER BY pos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []customer.Customer{}
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.GUID, &c.FirstName, &c.LastName, &c.Email, &c.Address); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Update replaces an existing customer.
func (r *Repository) Update(ctx context.Context, c customer.Customer) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE customers SET first_name=$2, last_name=$3, email=$4, address=$5 WHERE guid=$1",
		c.GUID, c.FirstName, c.LastName, c.Email, c.Address)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a customer by guid.
func (r *Repository) Delete(ctx context.Context, guid string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE guid=$1", guid)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customer.ErrNotFound
	}
	return nil
}
