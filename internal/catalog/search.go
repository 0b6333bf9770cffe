package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// SearchResult — книги и авторы, подошедшие под запрос.
type SearchResult struct {
	Query   string          `json:"query"`
	Books   []models.Book   `json:"books"`
	Authors []models.Author `json:"authors"`
}

// NormalizeQuery приводит каждое слово запроса к виду «Заглавная буква + строчные».
func NormalizeQuery(query string) string {
	return cases.Title(language.Und).String(query)
}

// Search ищет подстроку query без учёта регистра в названиях книг
// и в именах или фамилиях авторов. Пустой запрос возвращает всё.
// Относительный порядок входных данных сохраняется.
func Search(books []models.Book, authors []models.Author, query string) SearchResult {
	normalized := NormalizeQuery(query)
	needle := strings.ToLower(normalized)

	res := SearchResult{
		Query:   normalized,
		Books:   make([]models.Book, 0),
		Authors: make([]models.Author, 0),
	}
	for _, b := range books {
		if containsFold(b.Title, needle) {
			res.Books = append(res.Books, b)
		}
	}
	for _, a := range authors {
		if containsFold(a.FirstName, needle) || containsFold(a.LastName, needle) {
			res.Authors = append(res.Authors, a)
		}
	}
	return res
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
