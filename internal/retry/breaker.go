package retry

import (
	"time"
)

// State — состояние предохранителя
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// BreakerStatus — снимок состояния предохранителя для наблюдаемости
type BreakerStatus struct {
	OperationID         string    `json:"operation_id"`
	State               State     `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailureAt       time.Time `json:"last_failure_at,omitempty"`
	ReopenAt            time.Time `json:"reopen_at,omitempty"`
	TotalCalls          int       `json:"total_calls"`
	TotalSuccesses      int       `json:"total_successes"`
}

// breaker — внутреннее состояние предохранителя одной операции.
// Счетчик consecutiveFailures считает отказы уровня операции
// (после исчерпания повторов или неretryable-ошибки), а не отдельные
// попытки. Доступ только под мьютексом исполнителя.
type breaker struct {
	state               State
	consecutiveFailures int
	lastFailureAt       time.Time
	reopenAt            time.Time
	totalCalls          int
	totalSuccesses      int
	trialInFlight       bool
}

func newBreaker() *breaker {
	return &breaker{state: StateClosed}
}

func (b *breaker) status(operationID string) BreakerStatus {
	return BreakerStatus{
		OperationID:         operationID,
		State:               b.state,
		ConsecutiveFailures: b.consecutiveFailures,
		LastFailureAt:       b.lastFailureAt,
		ReopenAt:            b.reopenAt,
		TotalCalls:          b.totalCalls,
		TotalSuccesses:      b.totalSuccesses,
	}
}

// onSuccess фиксирует успешный вызов операции
func (b *breaker) onSuccess() {
	b.totalCalls++
	b.totalSuccesses++
	b.consecutiveFailures = 0
	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.trialInFlight = false
	}
}

// onFailure фиксирует отказ уровня операции и при необходимости
// размыкает предохранитель
func (b *breaker) onFailure(now time.Time, threshold int, timeout time.Duration) {
	b.totalCalls++
	b.consecutiveFailures++
	b.lastFailureAt = now

	if b.state == StateHalfOpen {
		// Пробный вызов не удался: размыкаемся на новый таймаут
		b.state = StateOpen
		b.reopenAt = now.Add(timeout)
		b.trialInFlight = false
		return
	}
	if b.consecutiveFailures >= threshold {
		b.state = StateOpen
		b.reopenAt = now.Add(timeout)
	}
}

// allow решает, пропускать ли вызов. Первый вызов после reopenAt
// переводит предохранитель в half_open и проходит как пробный.
func (b *breaker) allow(now time.Time) bool {
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if now.Before(b.reopenAt) {
			return false
		}
		b.state = StateHalfOpen
		b.trialInFlight = true
		return true
	case StateHalfOpen:
		if b.trialInFlight {
			return false
		}
		b.trialInFlight = true
		return true
	default:
		return true
	}
}

func (b *breaker) reset() {
	b.state = StateClosed
	b.consecutiveFailures = 0
	b.reopenAt = time.Time{}
	b.trialInFlight = false
}
