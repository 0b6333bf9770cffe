package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

func TestStorage(t *testing.T) {
	storage := setupTestStorage(t)
	f := newTestFactory(t, storage)
	ctx := context.Background()

	t.Run("users and profiles", func(t *testing.T) {
		uid, err := storage.RegisterUser(ctx, models.User{
			Email:        "lib@example.com",
			Username:     "librarian",
			PasswordHash: "hash",
			Role:         models.RoleLibrarian,
			Permissions:  []string{models.PermMarkReturned, models.PermEditCatalog},
		})
		require.NoError(t, err)

		user, err := storage.GetUserByUsername(ctx, "librarian")
		require.NoError(t, err)
		assert.Equal(t, uid, user.UUID)
		assert.Equal(t, []string{models.PermMarkReturned, models.PermEditCatalog}, user.Permissions)

		assert.Equal(t, "lib@example.com", user.Email)

		_, err = storage.RegisterUser(ctx, models.User{
			Email: "other@example.com", Username: "librarian", PasswordHash: "hash", Role: models.RoleMember,
		})
		assert.ErrorIs(t, err, ErrUserExists)

		_, err = storage.GetUserByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)

		profile, err := storage.GetProfile(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "librarian", profile.Username)
		assert.Empty(t, profile.Bio)

		updated, err := storage.UpdateProfile(ctx, models.Profile{
			UserUID: uid, Email: "new@example.com", Bio: "Keeps the shelves", AvatarURL: "https://example.com/a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Equal(t, "Keeps the shelves", updated.Bio)
	})

	t.Run("books and authors", func(t *testing.T) {
		authorID := f.author("Frank", "Herbert")
		bookID := f.book("Dune", &authorID, "Science Fiction", "Classic")

		book, err := storage.ReadBook(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
		assert.ElementsMatch(t, []string{"Science Fiction", "Classic"}, book.Genres)

		book.Title = "Dune Messiah"
		book.Genres = []string{"Science Fiction"}
		_, err = storage.UpdateBook(ctx, *book, bookID)
		require.NoError(t, err)

		book, err = storage.ReadBook(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", book.Title)
		assert.Equal(t, []string{"Science Fiction"}, book.Genres)

		byAuthor, err := storage.ListBooksByAuthor(ctx, authorID)
		require.NoError(t, err)
		assert.Len(t, byAuthor, 1)

		found, err := storage.SearchBooks(ctx, "messiah")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, bookID, found[0].ID)

		authors, err := storage.SearchAuthors(ctx, "herb")
		require.NoError(t, err)
		require.Len(t, authors, 1)
		assert.Equal(t, authorID, authors[0].ID)

		list, total, err := storage.ListBooks(ctx, 10, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, 1)
		assert.NotEmpty(t, list)

		missing := 999999
		_, err = storage.CreateBook(ctx, models.Book{Title: "Orphan", ISBN: "9780441013593", AuthorID: &missing})
		assert.ErrorIs(t, err, ErrInvalidReference)

		_, err = storage.RemoveAuthor(ctx, authorID)
		require.NoError(t, err)
		book, err = storage.ReadBook(ctx, bookID)
		require.NoError(t, err)
		assert.Nil(t, book.AuthorID)

		_, err = storage.RemoveBook(ctx, bookID)
		require.NoError(t, err)
		_, err = storage.ReadBook(ctx, bookID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = storage.RemoveBook(ctx, bookID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("loan records", func(t *testing.T) {
		alice := f.user("alice")
		bob := f.user("bob")
		bookID := f.book("The Left Hand of Darkness", nil)

		late := f.loan(bookID, models.StatusOnLoan, &alice, date(2024, 1, 10))
		early := f.loan(bookID, models.StatusOnLoan, &alice, date(2024, 1, 5))
		bobs := f.loan(bookID, models.StatusOnLoan, &bob, date(2024, 1, 7))
		f.loan(bookID, models.StatusAvailable, nil, nil)

		rec, err := storage.ReadLoanRecord(ctx, early)
		require.NoError(t, err)
		assert.Equal(t, "The Left Hand of Darkness", rec.BookTitle)
		assert.Equal(t, models.StatusOnLoan, rec.Status)
		require.NoError(t, catalog.CheckLoanInvariant(*rec))

		mine, err := storage.ListOnLoan(ctx, &alice)
		require.NoError(t, err)
		ids := make([]string, 0, len(mine))
		for _, l := range catalog.ListMyBorrowed(mine, alice) {
			ids = append(ids, l.ID)
		}
		assert.Equal(t, []string{early, late}, ids)

		all, err := storage.ListOnLoan(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		renewed, err := storage.MutateLoanRecord(ctx, bobs, func(rec *models.LoanRecord) error {
			rec.DueBack = date(2024, 2, 1)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, renewed.DueBack.Equal(*date(2024, 2, 1)))

		errStop := errors.New("stop")
		_, err = storage.MutateLoanRecord(ctx, bobs, func(rec *models.LoanRecord) error {
			rec.Status = models.StatusAvailable
			return errStop
		})
		assert.ErrorIs(t, err, errStop)
		rec, err = storage.ReadLoanRecord(ctx, bobs)
		require.NoError(t, err)
		assert.Equal(t, models.StatusOnLoan, rec.Status, "failed mutation must be rolled back")

		_, err = storage.MutateLoanRecord(ctx, "not-a-uuid", func(*models.LoanRecord) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)

		byBook, err := storage.ListLoanRecordsByBook(ctx, bookID)
		require.NoError(t, err)
		assert.Len(t, byBook, 4)

		stats, err := storage.CatalogStats(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.Instances, 4)
		assert.GreaterOrEqual(t, stats.InstancesAvailable, 1)

		_, err = storage.RemoveLoanRecord(ctx, late)
		require.NoError(t, err)
		_, err = storage.ReadLoanRecord(ctx, late)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.ReadBook(cctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
