package catalog

import (
	"slices"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// ListMyBorrowed возвращает выданные пользователю userID экземпляры,
// отсортированные по дате возврата (ближайшие первыми).
// Порядок экземпляров с одинаковой датой сохраняется из входных данных.
func ListMyBorrowed(loans []models.LoanRecord, userID string) []models.LoanRecord {
	return borrowed(loans, func(l models.LoanRecord) bool {
		return l.BorrowerUID != nil && *l.BorrowerUID == userID
	})
}

// ListAllBorrowed возвращает все выданные экземпляры в том же порядке, что и ListMyBorrowed.
func ListAllBorrowed(loans []models.LoanRecord) []models.LoanRecord {
	return borrowed(loans, func(models.LoanRecord) bool { return true })
}

func borrowed(loans []models.LoanRecord, match func(models.LoanRecord) bool) []models.LoanRecord {
	result := make([]models.LoanRecord, 0, len(loans))
	for _, l := range loans {
		if l.Status == models.StatusOnLoan && match(l) {
			result = append(result, l)
		}
	}
	slices.SortStableFunc(result, func(a, b models.LoanRecord) int {
		return compareDueBack(a, b)
	})
	return result
}

// записи без даты возврата уходят в конец
func compareDueBack(a, b models.LoanRecord) int {
	switch {
	case a.DueBack == nil && b.DueBack == nil:
		return 0
	case a.DueBack == nil:
		return 1
	case b.DueBack == nil:
		return -1
	}
	return dateOf(*a.DueBack).Compare(dateOf(*b.DueBack))
}
