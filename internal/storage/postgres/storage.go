package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
)

// pgxPool abstracts the connection pool so tests can substitute a mock.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type refundRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Refunds() repository.RefundRepository {
	return &refundRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            street_address TEXT NOT NULL,
            city TEXT NOT NULL,
            state TEXT NOT NULL DEFAULT '',
            postal_code TEXT NOT NULL,
            carrier TEXT NOT NULL DEFAULT '',
            tracking_number TEXT NOT NULL DEFAULT '',
            order_status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            session_id TEXT,
            payment_intent_id TEXT,
            shipping_date TIMESTAMPTZ,
            payment_due_date TIMESTAMPTZ,
            total BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            product_id BIGINT NOT NULL,
            product_name TEXT NOT NULL,
            unit_amount BIGINT NOT NULL,
            quantity INT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS refunds (
            id SERIAL PRIMARY KEY,
            order_id BIGINT UNIQUE NOT NULL REFERENCES orders(id),
            refund_id TEXT NOT NULL,
            payment_intent_id TEXT NOT NULL,
            processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_settlement ON orders(payment_status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, string(role)).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	u.Role = role
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, name, phone, street_address, city, state, postal_code,
        carrier, tracking_number, order_status, payment_status, session_id, payment_intent_id,
        shipping_date, payment_due_date, total, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.Phone, &o.StreetAddress, &o.City, &o.State,
		&o.PostalCode, &o.Carrier, &o.TrackingNumber, &o.OrderStatus, &o.PaymentStatus,
		&o.SessionID, &o.PaymentIntentID, &o.ShippingDate, &o.PaymentDueDate, &o.Total,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error) {
	created := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (user_id, name, phone, street_address, city, state, postal_code,
                                order_status, payment_status, total)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                             RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			order.UserID, order.Name, order.Phone, order.StreetAddress, order.City, order.State,
			order.PostalCode, order.OrderStatus, order.PaymentStatus, order.Total,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			return err
		}

		const insertLine = `INSERT INTO order_lines (order_id, product_id, product_name, unit_amount, quantity)
                            VALUES ($1, $2, $3, $4, $5)`
		for _, line := range lines {
			if _, err := tx.Exec(ctx, insertLine, created.ID, line.ProductID, line.ProductName, line.UnitAmount, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT id, order_id, product_id, product_name, unit_amount, quantity
                   FROM order_lines WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ProductName, &line.UnitAmount, &line.Quantity); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.OrderStatus != nil {
		args = append(args, string(*filter.OrderStatus))
		conditions = append(conditions, fmt.Sprintf("order_status=$%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, string(*filter.PaymentStatus))
		conditions = append(conditions, fmt.Sprintf("payment_status=$%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateShipping(ctx context.Context, id int64, upd repository.ShippingUpdate) error {
	const query = `UPDATE orders SET name=$1, phone=$2, street_address=$3, city=$4, state=$5, postal_code=$6,
                       carrier=COALESCE($7, carrier), tracking_number=COALESCE($8, tracking_number),
                       updated_at=NOW()
                   WHERE id=$9`
	tag, err := r.storage.pool.Exec(ctx, query,
		upd.Name, upd.Phone, upd.StreetAddress, upd.City, upd.State, upd.PostalCode,
		upd.Carrier, upd.TrackingNumber, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) SetSession(ctx context.Context, id int64, sessionID, paymentIntentID string) error {
	const query = `UPDATE orders SET session_id=$1, payment_intent_id=NULLIF($2, ''), updated_at=NOW()
                   WHERE id=$3 AND session_id IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, sessionID, paymentIntentID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainErrors.ErrAlreadyCheckedOut
	}
	return nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id int64, from []model.OrderStatus, to model.OrderStatus) error {
	expected := make([]string, 0, len(from))
	for _, status := range from {
		expected = append(expected, string(status))
	}

	const query = `UPDATE orders SET order_status=$1, updated_at=NOW()
                   WHERE id=$2 AND order_status = ANY($3)`
	tag, err := r.storage.pool.Exec(ctx, query, string(to), id, expected)
	if err != nil {
		return err
	}
	return r.resolveConditional(ctx, id, tag)
}

func (r *orderRepository) MarkShipped(ctx context.Context, id int64, carrier, trackingNumber string, shippedAt time.Time, dueDate *time.Time) error {
	const query = `UPDATE orders SET carrier=$1, tracking_number=$2, order_status=$3,
                       shipping_date=$4, payment_due_date=COALESCE($5, payment_due_date), updated_at=NOW()
                   WHERE id=$6 AND order_status=$7`
	tag, err := r.storage.pool.Exec(ctx, query,
		carrier, trackingNumber, string(model.OrderStatusShipped), shippedAt, dueDate,
		id, string(model.OrderStatusInProcess))
	if err != nil {
		return err
	}
	return r.resolveConditional(ctx, id, tag)
}

func (r *orderRepository) MarkCancelled(ctx context.Context, id int64, refund *model.Refund) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if refund != nil {
			const insertRefund = `INSERT INTO refunds (order_id, refund_id, payment_intent_id) VALUES ($1, $2, $3)`
			if _, err := tx.Exec(ctx, insertRefund, id, refund.RefundID, refund.PaymentIntentID); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23505" {
					// Refund already recorded for this order.
					return domainErrors.ErrInvalidTransition
				}
				return err
			}
		}

		const update = `UPDATE orders SET order_status=$1, payment_status=$2, updated_at=NOW()
                        WHERE id=$3 AND order_status NOT IN ($4, $5)`
		tag, err := tx.Exec(ctx, update,
			string(model.OrderStatusCancelled), string(model.PaymentStatusRefunded), id,
			string(model.OrderStatusCancelled), string(model.OrderStatusRefunded))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if _, err := r.getByIDTx(ctx, tx, id); err != nil {
				return err
			}
			return domainErrors.ErrInvalidTransition
		}
		return nil
	})
}

func (r *orderRepository) ApprovePayment(ctx context.Context, id int64, paymentIntentID string) error {
	const query = `UPDATE orders SET payment_status=$1, payment_intent_id=NULLIF($2, ''),
                       order_status = CASE WHEN order_status=$3 AND payment_status=$4 THEN $5 ELSE order_status END,
                       updated_at=NOW()
                   WHERE id=$6 AND payment_status = ANY($7)`
	tag, err := r.storage.pool.Exec(ctx, query,
		string(model.PaymentStatusApproved), paymentIntentID,
		string(model.OrderStatusPending), string(model.PaymentStatusPending), string(model.OrderStatusApproved),
		id, []string{string(model.PaymentStatusPending), string(model.PaymentStatusDelayed)})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.PaymentStatus == model.PaymentStatusApproved {
			return nil
		}
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

func (r *orderRepository) SelectBatchForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders
              WHERE payment_status = ANY($1)
                AND session_id IS NOT NULL
                AND order_status NOT IN ($2, $3)
              ORDER BY created_at
              LIMIT $4`
	rows, err := r.storage.pool.Query(ctx, query,
		[]string{string(model.PaymentStatusPending), string(model.PaymentStatusDelayed)},
		string(model.OrderStatusCancelled), string(model.OrderStatusRefunded), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveConditional maps a zero-row conditional update into the precise
// domain error: the order is either missing or in a state the transition
// does not accept.
func (r *orderRepository) resolveConditional(ctx context.Context, id int64, tag pgconn.CommandTag) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domainErrors.ErrInvalidTransition
}

func (r *orderRepository) getByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// --- RefundRepository implementation ---

func (r *refundRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Refund, error) {
	const query = `SELECT id, order_id, refund_id, payment_intent_id, processed_at
                   FROM refunds WHERE order_id=$1 ORDER BY processed_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Refund
	for rows.Next() {
		var refund model.Refund
		if err := rows.Scan(&refund.ID, &refund.OrderID, &refund.RefundID, &refund.PaymentIntentID, &refund.ProcessedAt); err != nil {
			return nil, err
		}
		result = append(result, refund)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
