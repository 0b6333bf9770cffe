// Package page содержит разбор параметра ?page= и нарезку списков на страницы.
package page

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultSize — размер страницы списков каталога.
	DefaultSize = 10
	// MaxNumber ограничивает номер страницы так, чтобы OFFSET оставался в пределах int32.
	MaxNumber = math.MaxInt32 / DefaultSize
)

// Request — запрошенная страница, нумерация с 1.
type Request struct {
	Number int
	Size   int
}

// Limit возвращает LIMIT для запроса к хранилищу.
func (p Request) Limit() int {
	return p.Size
}

// Offset возвращает OFFSET для запроса к хранилищу.
// Номер страницы меньше 1 даёт 0, переполнение насыщается до math.MaxInt.
func (p Request) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// FromRequest читает номер страницы из query-параметра page.
// Некорректные значения трактуются как первая страница, слишком большие
// урезаются до MaxNumber и затем сводятся к последней странице через Clamp.
func FromRequest(r *http.Request) Request {
	raw := r.URL.Query().Get("page")
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		n = MaxNumber
	case err != nil || n <= 0:
		n = 1
	case n > MaxNumber:
		n = MaxNumber
	}
	return Request{Number: n, Size: DefaultSize}
}

// Page — одна страница результата.
type Page[T any] struct {
	Number  int  `json:"page"`
	Size    int  `json:"page_size"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	Entries []T  `json:"entries"`
}

// Clamp приводит номер страницы к диапазону [1, последняя страница].
// Если страница за пределами списка, возвращается последняя.
func (p Request) Clamp(total int) Request {
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	last := (total + p.Size - 1) / p.Size
	if last == 0 {
		last = 1
	}
	if p.Number > last {
		p.Number = last
	}
	if p.Number < 1 {
		p.Number = 1
	}
	return p
}

// New собирает страницу из уже выбранных записей и общего количества.
func New[T any](p Request, total int, entries []T) Page[T] {
	if entries == nil {
		entries = make([]T, 0)
	}
	return Page[T]{
		Number:  p.Number,
		Size:    p.Size,
		Total:   total,
		HasNext: p.Number*p.Size < total,
		Entries: entries,
	}
}

// Slice нарезает уже упорядоченный список в памяти.
func Slice[T any](items []T, p Request) Page[T] {
	p = p.Clamp(len(items))
	start := min(p.Offset(), len(items))
	end := min(start+p.Size, len(items))
	return New(p, len(items), items[start:end])
}
