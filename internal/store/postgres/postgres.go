package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"dine24/backend/internal/domain"
	"dine24/backend/internal/store"
	"dine24/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, offer_price, portion_size, rating, is_vegetarian, orders_placed, active
		FROM menu_items
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0, 64)
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.OfferPrice, &item.PortionSize, &item.Rating, &item.IsVegetarian, &item.OrdersPlaced, &item.Active); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Store) GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	result := make(map[string]domain.MenuItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, offer_price, portion_size, rating, is_vegetarian, orders_placed, active
		FROM menu_items
		WHERE active = true AND id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.OfferPrice, &item.PortionSize, &item.Rating, &item.IsVegetarian, &item.OrdersPlaced, &item.Active); err != nil {
			return nil, err
		}
		result[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.ID == "" || item.Name == "" || item.Category == "" || item.Price < 1 {
		return nil, store.ErrInvalidInput
	}
	if item.OfferPrice < 0 || item.OfferPrice > item.Price {
		return nil, store.ErrInvalidInput
	}

	item.Active = true
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, category, price, offer_price, portion_size, rating, is_vegetarian, orders_placed, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,now(),now())
	`, item.ID, item.Name, item.Category, item.Price, item.OfferPrice, item.PortionSize, item.Rating, item.IsVegetarian, item.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := item
	return &created, nil
}

func (s *Store) IncrementOrdersPlaced(ctx context.Context, itemID string, by int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET orders_placed = orders_placed + $2, updated_at = now()
		WHERE id = $1
	`, itemID, by)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListTables(ctx context.Context) ([]domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_number, seating_capacity
		FROM restaurant_tables
		ORDER BY table_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]domain.Table, 0, 16)
	for rows.Next() {
		var table domain.Table
		if err := rows.Scan(&table.TableNumber, &table.SeatingCapacity); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}

func (s *Store) GetTableByNumber(ctx context.Context, number int) (*domain.Table, error) {
	var table domain.Table
	err := s.db.QueryRowContext(ctx, `
		SELECT table_number, seating_capacity
		FROM restaurant_tables
		WHERE table_number = $1
	`, number).Scan(&table.TableNumber, &table.SeatingCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (s *Store) CreateReservation(ctx context.Context, reservation domain.Reservation) (*domain.Reservation, error) {
	if reservation.FullName == "" || reservation.Email == "" || reservation.PartySize < 1 {
		return nil, store.ErrInvalidInput
	}
	if reservation.ID == "" {
		reservation.ID = xid.Reservation(time.Now())
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationStatusConfirmed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, full_name, email, phone, party_size, arrival_date, arrival_time, purpose, table_number, status, service_started_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, reservation.ID, reservation.FullName, reservation.Email, reservation.Phone, reservation.PartySize,
		reservation.ArrivalDate, reservation.ArrivalTime, reservation.Purpose, reservation.TableNumber,
		reservation.Status, reservation.ServiceStartedAt, reservation.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := reservation
	return &created, nil
}

func (s *Store) GetReservationByID(ctx context.Context, id string) (*domain.Reservation, error) {
	reservation, err := s.scanReservation(s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, party_size, arrival_date, arrival_time, purpose, table_number, status, service_started_at, created_at
		FROM reservations
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (s *Store) ListReservations(ctx context.Context, limit int) ([]domain.Reservation, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, email, phone, party_size, arrival_date, arrival_time, purpose, table_number, status, service_started_at, created_at
		FROM reservations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0, limit)
	for rows.Next() {
		reservation, err := s.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (s *Store) MarkServiceStarted(ctx context.Context, id string, at time.Time) (*domain.Reservation, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reservations
		SET service_started_at = $2, status = $3
		WHERE id = $1 AND service_started_at IS NULL
	`, id, at.UTC(), domain.ReservationStatusSeated)
	if err != nil {
		return nil, err
	}

	return s.GetReservationByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var serviceStartedAt sql.NullTime
	err := row.Scan(&reservation.ID, &reservation.FullName, &reservation.Email, &reservation.Phone,
		&reservation.PartySize, &reservation.ArrivalDate, &reservation.ArrivalTime, &reservation.Purpose,
		&reservation.TableNumber, &reservation.Status, &serviceStartedAt, &reservation.CreatedAt)
	if err != nil {
		return nil, err
	}
	if serviceStartedAt.Valid {
		startedAt := serviceStartedAt.Time.UTC()
		reservation.ServiceStartedAt = &startedAt
	}
	reservation.CreatedAt = reservation.CreatedAt.UTC()
	return &reservation, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
