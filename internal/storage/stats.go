package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// CatalogStats считает книги, экземпляры, доступные экземпляры и авторов одним запросом.
func (s *Storage) CatalogStats(ctx context.Context) (*models.CatalogStats, error) {
	const op = "storage.CatalogStats"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	var stats models.CatalogStats
	err := s.DB.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM books),
			(SELECT COUNT(*) FROM loan_records),
			(SELECT COUNT(*) FROM loan_records WHERE status = $1),
			(SELECT COUNT(*) FROM authors)`,
		models.StatusAvailable.Code(),
	).Scan(&stats.Books, &stats.Instances, &stats.InstancesAvailable, &stats.Authors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
