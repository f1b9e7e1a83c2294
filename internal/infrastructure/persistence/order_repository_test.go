package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func paidOrder(t *testing.T) *order.Order {
	t.Helper()
	subtotal, err := valueobject.NewMoneyFromString("25.50", valueobject.EUR)
	require.NoError(t, err)
	tax, err := valueobject.NewMoneyFromString("5.61", valueobject.EUR)
	require.NoError(t, err)
	total, err := valueobject.NewMoneyFromString("31.11", valueobject.EUR)
	require.NoError(t, err)

	o, err := order.NewOrder("ORD-1", "pi_123", "shopper@example.com", order.Totals{
		Subtotal: subtotal, TaxAmount: tax, Total: total, AmountCharged: 3111,
	})
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), "SKU-1", "Cup", decimal.RequireFromString("12.75"), 2))
	return o
}

func TestGormOrderRepository_CreateFromCheckout(t *testing.T) {
	t.Run("inserts order with items and clears cart in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := paidOrder(t)
		cartID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "order_items"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
			WithArgs(cartID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.CreateFromCheckout(context.Background(), o, cartID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation on payment_intent_id to ErrAlreadyExists", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := paidOrder(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_orders_payment_intent_id"})
		mock.ExpectRollback()

		err := repo.CreateFromCheckout(context.Background(), o, uuid.New())

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back cart clearing when insert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := paidOrder(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.CreateFromCheckout(context.Background(), o, uuid.New())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByPaymentIntentID(t *testing.T) {
	t.Run("finds existing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "number", "payment_intent_id", "email", "status", "subtotal", "tax_amount", "total", "amount_charged", "currency", "paid_at"}).
			AddRow(orderID, "ORD-1", "pi_123", "shopper@example.com", "paid",
				decimal.RequireFromString("25.50"), decimal.RequireFromString("5.61"),
				decimal.RequireFromString("31.11"), int64(3111), "EUR", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_intent_id = \$1`).
			WithArgs("pi_123", 1).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "sku", "name", "unit_price", "quantity"}))

		o, err := repo.FindByPaymentIntentID(context.Background(), "pi_123")

		require.NoError(t, err)
		assert.Equal(t, "pi_123", o.PaymentIntentID)
		assert.Equal(t, int64(3111), o.AmountCharged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no order exists", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_intent_id = \$1`).
			WithArgs("pi_missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByPaymentIntentID(context.Background(), "pi_missing")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
