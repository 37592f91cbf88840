package store

import (
	"context"
	"testing"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestToggleProductStockRequiresOwnership(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE products SET in_stock").
		WithArgs(int64(7), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.ToggleProductStock(context.Background(), 7, 10)
	assert.NoError(t, err)

	// Same product, wrong store: zero rows affected.
	mock.ExpectExec("UPDATE products SET in_stock").
		WithArgs(int64(7), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = st.ToggleProductStock(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsernameTakenLowercasesInput(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("pawsome").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := st.UsernameTaken(context.Background(), "PawSome")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStoreByUserIDReturnsNilWhenMissing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM stores`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := st.GetStoreByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisibleOrdersFiltersUnpaidCard(t *testing.T) {
	st, mock := newMockStore(t)

	columns := []string{"id", "user_id", "store_id", "address_id", "total", "payment_method",
		"is_coupon_used", "coupon_code", "is_paid", "status", "created_at", "updated_at"}
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs("user-1", models.PaymentMethodCOD, models.PaymentMethodCard).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(2), "user-1", int64(10), int64(5), "45.00", models.PaymentMethodCard,
				false, nil, true, models.OrderStatusProcessing, now, now).
			AddRow(int64(1), "user-1", int64(20), int64(5), "15.00", models.PaymentMethodCOD,
				false, nil, false, models.OrderStatusPlaced, now, now))

	orders, err := st.GetVisibleOrdersByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Equal(t, "45.00", orders[0].Total.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderItemsByOrderIDsEmptyInput(t *testing.T) {
	st, mock := newMockStore(t)

	items, err := st.GetOrderItemsByOrderIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet(), "empty input must not query")
}

func TestMarkOrdersPaidIsTransactional(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET is_paid").
		WithArgs(models.OrderStatusProcessing, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE users SET cart").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.MarkOrdersPaid(context.Background(), []int64{7, 8}, "user-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsEventProcessed(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	processed, err := st.IsEventProcessed(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
