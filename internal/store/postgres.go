package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) GetShippingInfoByUser(ctx context.Context, userID string) (*domain.ShippingInfo, error) {
	query := `SELECT id, user_id, email, phone, first_name, last_name,
	                 address_line_one, address_line_two, city, zip_code
	          FROM shipping_info WHERE user_id = $1 LIMIT 1`

	var info domain.ShippingInfo
	var phone, lineTwo sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&info.ID,
		&info.UserID,
		&info.Email,
		&phone,
		&info.FirstName,
		&info.LastName,
		&info.AddressLineOne,
		&lineTwo,
		&info.City,
		&info.ZipCode,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShippingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shipping info by user: %w", err)
	}
	info.Phone = phone.String
	info.AddressLineTwo = lineTwo.String

	return &info, nil
}

// SaveShippingInfo inserts a new record or rewrites the existing one, so a
// user keeps at most one current shipping record.
func (r *Repository) SaveShippingInfo(ctx context.Context, info *domain.ShippingInfo) error {
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}

	query := `INSERT INTO shipping_info
	            (id, user_id, email, phone, first_name, last_name,
	             address_line_one, address_line_two, city, zip_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (id) DO UPDATE SET
	            email = EXCLUDED.email,
	            phone = EXCLUDED.phone,
	            first_name = EXCLUDED.first_name,
	            last_name = EXCLUDED.last_name,
	            address_line_one = EXCLUDED.address_line_one,
	            address_line_two = EXCLUDED.address_line_two,
	            city = EXCLUDED.city,
	            zip_code = EXCLUDED.zip_code`

	_, err := r.db.ExecContext(ctx, query,
		info.ID,
		info.UserID,
		info.Email,
		nullable(info.Phone),
		info.FirstName,
		info.LastName,
		info.AddressLineOne,
		nullable(info.AddressLineTwo),
		info.City,
		info.ZipCode,
	)
	if err != nil {
		return fmt.Errorf("save shipping info: %w", err)
	}
	return nil
}

func (r *Repository) CreateCheckoutSession(ctx context.Context, cs *domain.CheckoutSession) error {
	query := `INSERT INTO checkout_sessions (checkout_id, shipping_info_id, total_cost, has_paid, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`

	var shippingID uuid.NullUUID
	if cs.ShippingInfoID != nil {
		shippingID = uuid.NullUUID{UUID: *cs.ShippingInfoID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, cs.CheckoutID, shippingID, cs.TotalCost, cs.HasPaid)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert checkout session: %w", err)
	}
	return nil
}

func (r *Repository) GetCheckoutSession(ctx context.Context, checkoutID string) (*domain.CheckoutSession, error) {
	query := `SELECT checkout_id, shipping_info_id, total_cost, has_paid, created_at
	          FROM checkout_sessions WHERE checkout_id = $1`

	var cs domain.CheckoutSession
	var shippingID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, query, checkoutID).Scan(
		&cs.CheckoutID,
		&shippingID,
		&cs.TotalCost,
		&cs.HasPaid,
		&cs.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkout session: %w", err)
	}
	if shippingID.Valid {
		cs.ShippingInfoID = &shippingID.UUID
	}

	return &cs, nil
}

func (r *Repository) CreateUserPayment(ctx context.Context, payment *domain.UserPayment) error {
	query := `INSERT INTO user_payments (checkout_id, user_id, customer_id, product_id, price, currency, quantity, has_paid)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		payment.CheckoutID,
		payment.UserID,
		payment.CustomerID,
		payment.ProductID,
		payment.Price,
		payment.Currency,
		payment.Quantity,
		payment.HasPaid,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("insert user payment: %w", err)
	}
	return nil
}

func (r *Repository) GetUserPayment(ctx context.Context, checkoutID string) (*domain.UserPayment, error) {
	query := `SELECT checkout_id, user_id, customer_id, product_id, price, currency, quantity, has_paid
	          FROM user_payments WHERE checkout_id = $1`

	var p domain.UserPayment
	err := r.db.QueryRowContext(ctx, query, checkoutID).Scan(
		&p.CheckoutID,
		&p.UserID,
		&p.CustomerID,
		&p.ProductID,
		&p.Price,
		&p.Currency,
		&p.Quantity,
		&p.HasPaid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user payment: %w", err)
	}

	return &p, nil
}

func (r *Repository) RecordPayment(ctx context.Context, checkoutID string, orders []domain.PastOrder) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback()

	// The paid flag doubles as the idempotence guard: the first caller flips
	// it and holds the row lock; everyone after sees zero rows affected.
	res, err := tx.ExecContext(ctx,
		`UPDATE checkout_sessions SET has_paid = TRUE WHERE checkout_id = $1 AND has_paid = FALSE`,
		checkoutID)
	if err != nil {
		return false, fmt.Errorf("mark checkout paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark checkout paid: %w", err)
	}
	if affected == 0 {
		var exists bool
		if e2 := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM checkout_sessions WHERE checkout_id = $1)`,
			checkoutID).Scan(&exists); e2 != nil {
			return false, fmt.Errorf("check checkout exists: %w", e2)
		}
		if !exists {
			return false, ErrCheckoutNotFound
		}
		return false, nil // already reconciled
	}

	if _, e2 := tx.ExecContext(ctx,
		`UPDATE user_payments SET has_paid = TRUE WHERE checkout_id = $1`,
		checkoutID); e2 != nil {
		return false, fmt.Errorf("mark user payment paid: %w", e2)
	}

	insert := `INSERT INTO past_orders
	             (id, user_id, checkout_id, product_id, product_name, price, currency, quantity, product_image, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	           ON CONFLICT (checkout_id, product_id) DO NOTHING`
	for _, order := range orders {
		id := order.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, e2 := tx.ExecContext(ctx, insert,
			id,
			order.UserID,
			order.CheckoutID,
			order.ProductID,
			order.Name,
			order.Price,
			order.Currency,
			order.Quantity,
			nullable(order.Image),
		); e2 != nil {
			return false, fmt.Errorf("insert past order: %w", e2)
		}
	}

	if e2 := tx.Commit(); e2 != nil {
		return false, fmt.Errorf("commit record payment: %w", e2)
	}
	return true, nil
}

func (r *Repository) ListPastOrders(ctx context.Context, userID string) ([]domain.PastOrder, error) {
	query := `SELECT id, user_id, checkout_id, product_id, product_name, price, currency, quantity, product_image, created_at
	          FROM past_orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query past orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.PastOrder
	for rows.Next() {
		var order domain.PastOrder
		var image sql.NullString
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.CheckoutID,
			&order.ProductID,
			&order.Name,
			&order.Price,
			&order.Currency,
			&order.Quantity,
			&image,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan past order row: %w", err)
		}
		order.Image = image.String
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
