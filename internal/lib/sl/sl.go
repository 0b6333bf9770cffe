// Package sl содержит атрибуты slog, общие для всего сервиса.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом err. Для nil ошибки значение пустое.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
