package customer

import (
	"context"
	"errors"
)

// Customer represents a customer record.
type Customer struct {
	GUID      string `json:"guid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// Repository defines behavior for storing customers.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, guid string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, guid string) error
}

// ErrNotFound indicates the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrExists indicates a customer with the same guid already exists.
var ErrExists = errors.New("customer already exists")
