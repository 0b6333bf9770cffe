// Package services содержит бизнес-логику каталога: книги, авторы, поиск и
// счётчики главной страницы. Карточки книг кешируются в Redis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/lib/page"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// ErrInvalidDate — дата в запросе не разбирается как 2006-01-02.
var ErrInvalidDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// CatalogRepository определяет методы хранилища, нужные каталогу.
type CatalogRepository interface {
	CreateBook(ctx context.Context, book models.Book) (int, error)
	ReadBook(ctx context.Context, id int) (*models.Book, error)
	UpdateBook(ctx context.Context, book models.Book, id int) (int, error)
	RemoveBook(ctx context.Context, id int) (int, error)
	// ListBooks возвращает страницу книг и общее количество книг.
	ListBooks(ctx context.Context, limit, offset int) ([]models.Book, int, error)
	ListBooksByAuthor(ctx context.Context, authorID int) ([]models.Book, error)
	// ListLoanRecordsByBook возвращает экземпляры книги; статусы меняются часто, поэтому не кешируются.
	ListLoanRecordsByBook(ctx context.Context, bookID int) ([]models.LoanRecord, error)
	// SearchBooks — грубый предварительный отбор по названию.
	SearchBooks(ctx context.Context, query string) ([]models.Book, error)

	CreateAuthor(ctx context.Context, author models.Author) (int, error)
	ReadAuthor(ctx context.Context, id int) (*models.Author, error)
	UpdateAuthor(ctx context.Context, author models.Author, id int) (int, error)
	RemoveAuthor(ctx context.Context, id int) (int, error)
	ListAuthors(ctx context.Context, limit, offset int) ([]models.Author, int, error)
	SearchAuthors(ctx context.Context, query string) ([]models.Author, error)

	CatalogStats(ctx context.Context) (*models.CatalogStats, error)
}

// Cache описывает методы кеша и счётчиков.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения по ключам.
	Invalidate(ctx context.Context, keys ...string) error
	// Incr увеличивает счётчик и возвращает значение до увеличения.
	Incr(ctx context.Context, key string) (int64, error)
}

// CatalogService реализует работу с книгами и авторами.
type CatalogService struct {
	repo     CatalogRepository
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, cache Cache, log *slog.Logger, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

func bookCacheKey(id int) string     { return fmt.Sprintf("book:%d", id) }
func bookViewsKey(id int) string     { return fmt.Sprintf("book:%d:views", id) }
func visitsKey(userID string) string { return "visits:" + userID }

// Index возвращает счётчики каталога и число предыдущих посещений главной страницы пользователем.
func (s *CatalogService) Index(ctx context.Context, userID string) (*models.CatalogStats, error) {
	const op = "services.Index"

	stats, err := s.repo.CatalogStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	visits, err := s.cache.Incr(ctx, visitsKey(userID))
	if err != nil {
		s.log.Warn("failed to count visit", slog.String("user_uid", userID), sl.Err(err))
	}
	stats.Visits = visits
	return stats, nil
}

// ListBooks возвращает страницу списка книг. Номер страницы за пределами
// списка заменяется последней страницей.
func (s *CatalogService) ListBooks(ctx context.Context, p page.Request) (page.Page[models.Book], error) {
	const op = "services.ListBooks"

	books, total, err := s.repo.ListBooks(ctx, p.Limit(), p.Offset())
	if err != nil {
		return page.Page[models.Book]{}, fmt.Errorf("%s: %w", op, err)
	}
	if clamped := p.Clamp(total); clamped != p {
		p = clamped
		if books, total, err = s.repo.ListBooks(ctx, p.Limit(), p.Offset()); err != nil {
			return page.Page[models.Book]{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return page.New(p, total, books), nil
}

// ReadBook возвращает карточку книги с автором, используя кеш,
// добавляет актуальный список экземпляров и увеличивает счётчик просмотров.
func (s *CatalogService) ReadBook(ctx context.Context, id int) (*models.BookDetail, error) {
	const op = "services.ReadBook"

	var detail *models.BookDetail
	cacheKey := bookCacheKey(id)
	found, err := s.cache.Get(ctx, cacheKey, &detail)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if !found || detail == nil {
		book, err := s.repo.ReadBook(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		detail = &models.BookDetail{Book: *book}
		if book.AuthorID != nil {
			author, err := s.repo.ReadAuthor(ctx, *book.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			detail.Author = author
		}
		if err := s.cache.Set(ctx, cacheKey, detail, s.cacheTTL); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	copies, err := s.repo.ListLoanRecordsByBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	detail.Copies = copies

	views, err := s.cache.Incr(ctx, bookViewsKey(id))
	if err != nil {
		s.log.Warn("failed to count book view", slog.Int("book_id", id), sl.Err(err))
	} else {
		detail.Views = views + 1
	}
	return detail, nil
}

// CreateBook создаёт книгу и возвращает её ID.
func (s *CatalogService) CreateBook(ctx context.Context, req models.DummyBook) (int, error) {
	const op = "services.CreateBook"

	id, err := s.repo.CreateBook(ctx, bookFromRequest(req))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new book", slog.Int("id", id))
	return id, nil
}

// UpdateBook обновляет книгу и сбрасывает её карточку в кеше.
func (s *CatalogService) UpdateBook(ctx context.Context, req models.DummyBook, id int) (int, error) {
	const op = "services.UpdateBook"

	count, err := s.repo.UpdateBook(ctx, bookFromRequest(req), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, bookCacheKey(id))
	return count, nil
}

// RemoveBook удаляет книгу и сбрасывает её карточку и счётчик просмотров.
func (s *CatalogService) RemoveBook(ctx context.Context, id int) (int, error) {
	const op = "services.RemoveBook"

	count, err := s.repo.RemoveBook(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, bookCacheKey(id), bookViewsKey(id))
	return count, nil
}

// ListAuthors возвращает страницу списка авторов.
func (s *CatalogService) ListAuthors(ctx context.Context, p page.Request) (page.Page[models.Author], error) {
	const op = "services.ListAuthors"

	authors, total, err := s.repo.ListAuthors(ctx, p.Limit(), p.Offset())
	if err != nil {
		return page.Page[models.Author]{}, fmt.Errorf("%s: %w", op, err)
	}
	if clamped := p.Clamp(total); clamped != p {
		p = clamped
		if authors, total, err = s.repo.ListAuthors(ctx, p.Limit(), p.Offset()); err != nil {
			return page.Page[models.Author]{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return page.New(p, total, authors), nil
}

// ReadAuthor возвращает автора вместе с его книгами.
func (s *CatalogService) ReadAuthor(ctx context.Context, id int) (*models.AuthorDetail, error) {
	const op = "services.ReadAuthor"

	author, err := s.repo.ReadAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	books, err := s.repo.ListBooksByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthorDetail{Author: *author, Books: books}, nil
}

// CreateAuthor создаёт автора и возвращает его ID.
func (s *CatalogService) CreateAuthor(ctx context.Context, req models.DummyAuthor) (int, error) {
	const op = "services.CreateAuthor"

	author, err := authorFromRequest(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateAuthor(ctx, author)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new author", slog.Int("id", id))
	return id, nil
}

// UpdateAuthor обновляет автора. Карточки его книг в кеше сбрасываются.
func (s *CatalogService) UpdateAuthor(ctx context.Context, req models.DummyAuthor, id int) (int, error) {
	const op = "services.UpdateAuthor"

	author, err := authorFromRequest(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.repo.UpdateAuthor(ctx, author, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateAuthorBooks(ctx, id)
	return count, nil
}

// RemoveAuthor удаляет автора; книги остаются без автора.
func (s *CatalogService) RemoveAuthor(ctx context.Context, id int) (int, error) {
	const op = "services.RemoveAuthor"

	s.invalidateAuthorBooks(ctx, id)
	count, err := s.repo.RemoveAuthor(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Search ищет книги по названию и авторов по имени или фамилии.
func (s *CatalogService) Search(ctx context.Context, query string) (catalog.SearchResult, error) {
	const op = "services.Search"

	books, err := s.repo.SearchBooks(ctx, query)
	if err != nil {
		return catalog.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	authors, err := s.repo.SearchAuthors(ctx, query)
	if err != nil {
		return catalog.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return catalog.Search(books, authors, query), nil
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.Any("keys", keys), sl.Err(err))
	}
}

func (s *CatalogService) invalidateAuthorBooks(ctx context.Context, authorID int) {
	books, err := s.repo.ListBooksByAuthor(ctx, authorID)
	if err != nil {
		s.log.Warn("failed to list author books", slog.Int("author_id", authorID), sl.Err(err))
		return
	}
	if len(books) == 0 {
		return
	}
	keys := make([]string, 0, len(books))
	for _, b := range books {
		keys = append(keys, bookCacheKey(b.ID))
	}
	s.invalidate(ctx, keys...)
}

func bookFromRequest(req models.DummyBook) models.Book {
	return models.Book{
		Title:    req.Title,
		Summary:  req.Summary,
		ISBN:     req.ISBN,
		AuthorID: req.AuthorID,
		Genres:   req.Genres,
	}
}

func authorFromRequest(req models.DummyAuthor) (models.Author, error) {
	author := models.Author{FirstName: req.FirstName, LastName: req.LastName}
	var err error
	if author.DateOfBirth, err = parseDate(req.DateOfBirth); err != nil {
		return models.Author{}, err
	}
	if author.DateOfDeath, err = parseDate(req.DateOfDeath); err != nil {
		return models.Author{}, err
	}
	return author, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &t, nil
}
