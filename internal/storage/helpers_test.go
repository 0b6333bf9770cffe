package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/library-catalog/internal/migrations"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// setupTestStorage поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// testFactory создаёт тестовые записи через публичные методы хранилища.
type testFactory struct {
	t       *testing.T
	storage *Storage
}

func newTestFactory(t *testing.T, storage *Storage) *testFactory {
	return &testFactory{t: t, storage: storage}
}

func (f *testFactory) user(username string) string {
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		Role:         models.RoleMember,
	})
	require.NoError(f.t, err)
	return uid
}

func (f *testFactory) author(first, last string) int {
	id, err := f.storage.CreateAuthor(context.Background(), models.Author{FirstName: first, LastName: last})
	require.NoError(f.t, err)
	return id
}

func (f *testFactory) book(title string, authorID *int, genres ...string) int {
	id, err := f.storage.CreateBook(context.Background(), models.Book{
		Title:    title,
		ISBN:     "9780441013593",
		AuthorID: authorID,
		Genres:   genres,
	})
	require.NoError(f.t, err)
	return id
}

func (f *testFactory) loan(bookID int, status models.LoanStatus, borrower *string, dueBack *time.Time) string {
	id, err := f.storage.CreateLoanRecord(context.Background(), models.LoanRecord{
		BookID:      bookID,
		Imprint:     "First edition",
		Status:      status,
		BorrowerUID: borrower,
		DueBack:     dueBack,
	})
	require.NoError(f.t, err)
	return id
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
