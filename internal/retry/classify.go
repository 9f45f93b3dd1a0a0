package retry

import (
	"strings"
)

// Category — категория ошибки для гистограммы статистики
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryNotFound       Category = "not_found"
	CategoryInvalidData    Category = "invalid_data"
	CategoryNetwork        Category = "network"
	CategoryTimeout        Category = "timeout"
	CategoryRateLimited    Category = "rate_limited"
	CategoryUnavailable    Category = "unavailable"
	CategoryInternal       Category = "internal"
	CategoryUnknown        Category = "unknown"
)

// Маркеры по умолчанию. Сопоставление выполняется по подстроке без
// учета регистра; неretryable-маркеры проверяются первыми.
var (
	defaultNonRetryableMarkers = []string{
		"unauthorized",
		"forbidden",
		"authentication",
		"authorization",
		"invalid token",
		"not found",
		"invalid",
		"validation",
		"bad request",
	}

	defaultRetryableMarkers = []string{
		"timeout",
		"deadline exceeded",
		"connection",
		"network",
		"rate limit",
		"too many requests",
		"unavailable",
		"internal server error",
		"temporar",
	}
)

// Classify определяет категорию ошибки и решает, имеет ли смысл повтор.
// Неretryable-маркеры проверяются первыми и прерывают повторы немедленно.
// Ошибка, не попавшая ни в один список, считается retryable: при
// неизвестном сбое доступность важнее быстрого отказа.
func Classify(err error, cfg *Config) (Category, bool) {
	if err == nil {
		return CategoryUnknown, false
	}

	msg := strings.ToLower(err.Error())

	for _, marker := range cfg.NonRetryableMarkers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return categoryOf(msg), false
		}
	}
	for _, marker := range cfg.RetryableMarkers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return categoryOf(msg), true
		}
	}

	return CategoryUnknown, true
}

func categoryOf(msg string) Category {
	switch {
	case containsAny(msg, "unauthorized", "forbidden", "authentication", "authorization", "invalid token"):
		return CategoryAuthentication
	case strings.Contains(msg, "not found"):
		return CategoryNotFound
	case containsAny(msg, "invalid", "validation", "bad request"):
		return CategoryInvalidData
	case containsAny(msg, "timeout", "deadline exceeded"):
		return CategoryTimeout
	case containsAny(msg, "rate limit", "too many requests"):
		return CategoryRateLimited
	case strings.Contains(msg, "unavailable"):
		return CategoryUnavailable
	case strings.Contains(msg, "internal"):
		return CategoryInternal
	case containsAny(msg, "connection", "network"):
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}

func containsAny(msg string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
