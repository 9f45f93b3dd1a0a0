package retry

import (
	"errors"
)

var (
	// ErrCircuitOpen возвращается, когда вызов отклонен разомкнутым
	// предохранителем без выполнения операции. Отличим от обычных
	// ошибок операции через errors.Is.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)
