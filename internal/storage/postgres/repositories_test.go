package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"agri-marketplace/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupRepository_FindByName(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStartupRepository(db)

	mock.ExpectQuery(`SELECT id, name, contact, created_at FROM startups WHERE name = \$1`).
		WithArgs("GreenRoots").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact", "created_at"}).
			AddRow("s-1", "GreenRoots", `{"name":"Ravi","phone":"+919800000001","email":"ops@greenroots.in"}`, testNow))

	s, err := repo.FindByName(context.Background(), "GreenRoots")
	require.NoError(t, err)
	assert.Equal(t, "ops@greenroots.in", s.Contact.Email)

	mock.ExpectQuery(`FROM startups`).WithArgs("Nobody").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByName(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartupRepository_Upsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStartupRepository(db)

	mock.ExpectExec(`INSERT INTO startups .+ ON CONFLICT \(name\)`).
		WithArgs(sqlmock.AnyArg(), "SkyAgri", sqlmock.AnyArg(), testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &models.Startup{Name: "SkyAgri", CreatedAt: testNow}
	require.NoError(t, repo.Upsert(context.Background(), s))
	assert.NotEmpty(t, s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := &models.Order{
		OrderNumber:         "ORD-1715328000000-42",
		ProductNameSnapshot: "Neem Oil",
		Quantity:            2,
		Total:               decimal.RequireFromString("499.00"),
		ShippingAddress:     "Village Road, Nashik",
		Buyer:               models.Buyer{Name: "Asha", Email: "asha@farm.in"},
		Status:              models.OrderStatusPlaced,
		EstimatedDelivery:   testNow.AddDate(0, 0, 5),
		CreatedAt:           testNow,
		UpdatedAt:           testNow,
	}

	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.OrderNumber, "Neem Oil", 2, sqlmock.AnyArg(), "Village Road, Nashik", sqlmock.AnyArg(),
			"placed", order.EstimatedDelivery, testNow, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Insert(ctx, order))

	mock.ExpectQuery(`FROM orders WHERE order_number = \$1`).
		WithArgs(order.OrderNumber).
		WillReturnRows(sqlmock.NewRows([]string{"order_number", "product_name", "quantity", "total", "shipping_address",
			"buyer", "status", "estimated_delivery", "created_at", "updated_at"}).
			AddRow(order.OrderNumber, "Neem Oil", 2, "499.00", "Village Road, Nashik", `{"name":"Asha","email":"asha@farm.in"}`,
				"shipped", order.EstimatedDelivery, testNow, testNow))
	found, err := repo.FindByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, found.Status)
	assert.Equal(t, "Asha", found.Buyer.Name)

	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs("delivered", testNow, order.OrderNumber).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusDelivered, testNow))

	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs("delivered", testNow, "ORD-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "ORD-missing", models.OrderStatusDelivered, testNow), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	event := &models.NotificationEvent{ID: "7b0c1f7e-0000-4000-8000-000000000001", Message: "New order", Type: models.NotificationTypeOrder, CreatedAt: testNow}
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(event.ID, "New order", "order", false, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Insert(ctx, event))

	mock.ExpectQuery(`FROM notifications\s+ORDER BY created_at DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "type", "read", "created_at"}).
			AddRow("n-2", "second", "order", false, testNow).
			AddRow("n-1", "first", "order", true, testNow.Add(-time.Minute)))
	events, err := repo.ListRecent(ctx, 20)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "n-2", events[0].ID)
	assert.True(t, events[1].Read)

	mock.ExpectExec(`UPDATE notifications SET read = TRUE`).WithArgs("n-9").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkRead(ctx, "n-9"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
