package store

import (
	"context"
	"errors"
	"time"

	"dine24/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	IncrementOrdersPlaced(ctx context.Context, itemID string, by int64) error
	ListTables(ctx context.Context) ([]domain.Table, error)
	GetTableByNumber(ctx context.Context, number int) (*domain.Table, error)
	CreateReservation(ctx context.Context, reservation domain.Reservation) (*domain.Reservation, error)
	GetReservationByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, limit int) ([]domain.Reservation, error)
	MarkServiceStarted(ctx context.Context, id string, at time.Time) (*domain.Reservation, error)
}
