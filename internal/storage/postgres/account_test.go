package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
)

func TestNotificationRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}
	ctx := context.Background()

	now := time.Now()
	n := model.Notification{UserID: 1, Title: "Order Placed", Message: "ok", Type: model.NotificationTypeOrder}
	mock.ExpectQuery("INSERT INTO notifications").WithArgs(int64(1), "Order Placed", "ok", model.NotificationTypeOrder).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))
	created, err := repo.Create(ctx, n)
	if err != nil || created.ID != 5 {
		t.Fatalf("unexpected notification: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO notifications").WithArgs(int64(1), "Order Placed", "ok", model.NotificationTypeOrder).
		WillReturnError(errors.New("insert"))
	if _, err := repo.Create(ctx, n); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM notifications WHERE user_id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "user_id", "title", "message", "type", "is_read", "created_at"}).
			AddRow(int64(5), int64(1), "Order Placed", "ok", model.NotificationTypeOrder, false, now))
	list, err := repo.ListByUser(ctx, 1)
	if err != nil || len(list) != 1 || list[0].IsRead {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(1)).WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.CountUnread(ctx, 1)
	if err != nil || count != 3 {
		t.Fatalf("unexpected count %d err=%v", count, err)
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(2)).WillReturnError(errors.New("count"))
	if _, err := repo.CountUnread(ctx, 2); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int64(5), int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkRead(ctx, 1, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int64(5), int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.MarkRead(ctx, 2, 5); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 4))
	if err := repo.MarkAllRead(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM notifications").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("DELETE", 4))
	if err := repo.DeleteAll(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestAddressRepositoryReads(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &addressRepository{storage: storage}

	now := time.Now()
	cols := []string{"id", "user_id", "name", "phone", "address_line1", "address_line2", "city", "state", "postal_code", "is_default", "created_at"}
	mock.ExpectQuery("FROM user_addresses WHERE user_id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(cols).
			AddRow(int64(1), int64(1), "Home", "555", "1 Main St", "", "Springfield", "IL", "62701", true, now).
			AddRow(int64(2), int64(1), "Work", "556", "2 Oak Ave", "Suite 4", "Springfield", "IL", "62702", false, now))
	list, err := repo.ListByUser(context.Background(), 1)
	if err != nil || len(list) != 2 || !list[0].IsDefault {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("FROM user_addresses WHERE id=").WithArgs(int64(2), int64(1)).WillReturnRows(
		pgxmockv3.NewRows(cols).AddRow(int64(2), int64(1), "Work", "556", "2 Oak Ave", "Suite 4", "Springfield", "IL", "62702", false, now))
	address, err := repo.GetForUser(context.Background(), 1, 2)
	if err != nil || address.AddressLine2 != "Suite 4" {
		t.Fatalf("unexpected address: %+v err=%v", address, err)
	}

	mock.ExpectQuery("FROM user_addresses WHERE id=").WithArgs(int64(2), int64(9)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetForUser(context.Background(), 9, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestAddressRepositoryWrites(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &addressRepository{storage: storage}
	ctx := context.Background()

	now := time.Now()
	a := model.Address{UserID: 1, Name: "Home", Phone: "555", AddressLine1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", IsDefault: true}
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_addresses SET is_default=FALSE").WithArgs(int64(1), int64(0)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO user_addresses").
		WithArgs(int64(1), "Home", "555", "1 Main St", "", "Springfield", "IL", "62701", true).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))
	mock.ExpectCommit()
	created, err := repo.Create(ctx, a)
	if err != nil || created.ID != 3 {
		t.Fatalf("unexpected address: %+v err=%v", created, err)
	}

	a.IsDefault = false
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO user_addresses").
		WithArgs(int64(1), "Home", "555", "1 Main St", "", "Springfield", "IL", "62701", false).
		WillReturnError(errors.New("insert"))
	mock.ExpectRollback()
	if _, err := repo.Create(ctx, a); err == nil {
		t.Fatal("expected error")
	}

	a.ID = 3
	a.IsDefault = true
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_addresses SET is_default=FALSE").WithArgs(int64(1), int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE user_addresses SET name").
		WithArgs("Home", "555", "1 Main St", "", "Springfield", "IL", "62701", true, int64(3), int64(1)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.IsDefault = false
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_addresses SET name").
		WithArgs("Home", "555", "1 Main St", "", "Springfield", "IL", "62701", false, int64(3), int64(1)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	if err := repo.Update(ctx, a); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProfileRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &profileRepository{storage: storage}
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery("FROM profiles WHERE user_id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"user_id", "name", "phone", "address", "updated_at"}).AddRow(int64(1), "Ann", "555", "1 Main St", now))
	profile, err := repo.Get(ctx, 1)
	if err != nil || profile.Name != "Ann" {
		t.Fatalf("unexpected profile: %+v err=%v", profile, err)
	}

	mock.ExpectQuery("FROM profiles WHERE user_id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO profiles").WithArgs(int64(1), "Ann", "555", "1 Main St").
		WillReturnRows(pgxmockv3.NewRows([]string{"updated_at"}).AddRow(now))
	saved, err := repo.Upsert(ctx, model.Profile{UserID: 1, Name: "Ann", Phone: "555", Address: "1 Main St"})
	if err != nil || !saved.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected profile: %+v err=%v", saved, err)
	}

	mock.ExpectQuery("INSERT INTO profiles").WithArgs(int64(1), "", "", "").WillReturnError(errors.New("upsert"))
	if _, err := repo.Upsert(ctx, model.Profile{UserID: 1}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
