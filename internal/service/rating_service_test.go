package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatingServiceFixture(t *testing.T) (*RatingService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRatingService(store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))), mock
}

var orderColumns = []string{"id", "user_id", "store_id", "address_id", "total", "payment_method",
	"is_coupon_used", "coupon_code", "is_paid", "status", "created_at", "updated_at"}

func orderRow(id int64, userID, status string) []driver.Value {
	now := time.Now()
	return []driver.Value{id, userID, int64(10), int64(5), "45.00", models.PaymentMethodCOD,
		false, nil, false, status, now, now}
}

func TestAddRatingRejectsOutOfRange(t *testing.T) {
	svc, mock := newRatingServiceFixture(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddRating(context.Background(), "user-1", &AddRatingRequest{
			OrderID: 1, ProductID: 2, Rating: rating,
		})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRatingUnknownOrder(t *testing.T) {
	svc, mock := newRatingServiceFixture(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs(int64(1), "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.AddRating(context.Background(), "user-1", &AddRatingRequest{
		OrderID: 1, ProductID: 2, Rating: 4,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRatingRequiresDelivery(t *testing.T) {
	svc, mock := newRatingServiceFixture(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(1, "user-1", models.OrderStatusShipped)...))

	_, err := svc.AddRating(context.Background(), "user-1", &AddRatingRequest{
		OrderID: 1, ProductID: 2, Rating: 4,
	})
	assert.ErrorIs(t, err, ErrNotDelivered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRatingRejectsDuplicate(t *testing.T) {
	svc, mock := newRatingServiceFixture(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(1, "user-1", models.OrderStatusDelivered)...))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.AddRating(context.Background(), "user-1", &AddRatingRequest{
		OrderID: 1, ProductID: 2, Rating: 4,
	})
	assert.ErrorIs(t, err, ErrAlreadyRated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRatingDeliveredOrder(t *testing.T) {
	svc, mock := newRatingServiceFixture(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WithArgs(int64(1), "user-1").
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(1, "user-1", models.OrderStatusDelivered)...))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO ratings").
		WithArgs("user-1", int64(1), int64(2), 5, "great harness").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(33), time.Now()))

	rating, err := svc.AddRating(context.Background(), "user-1", &AddRatingRequest{
		OrderID: 1, ProductID: 2, Rating: 5, Review: "great harness",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(33), rating.ID)
	assert.Equal(t, 5, rating.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}
