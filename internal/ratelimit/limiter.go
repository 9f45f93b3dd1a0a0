package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	window               = time.Minute
	utilizationThreshold = 0.8
)

// Snapshot — состояние окна лимитера на момент опроса
type Snapshot struct {
	CallsInWindow  int       `json:"calls_in_window"`
	CallsPerMinute int       `json:"calls_per_minute"`
	Utilization    float64   `json:"utilization"`
	OldestCall     time.Time `json:"oldest_call,omitempty"`
}

// Limiter ограничивает количество исходящих вызовов к внешнему API
// скользящим окном в одну минуту. Устаревшие отметки времени удаляются
// лениво при каждой проверке.
type Limiter struct {
	mu                sync.Mutex
	callsPerMinute    int
	backoffMultiplier float64
	calls             []time.Time

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option настраивает лимитер (подмена часов и ожидания в тестах)
type Option func(*Limiter)

func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) { l.clock = clock }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// New создает лимитер с заданным лимитом вызовов в минуту
func New(callsPerMinute int, backoffMultiplier float64, opts ...Option) *Limiter {
	if callsPerMinute <= 0 {
		callsPerMinute = 120
	}
	if backoffMultiplier <= 0 {
		backoffMultiplier = 1.5
	}
	l := &Limiter{
		callsPerMinute:    callsPerMinute,
		backoffMultiplier: backoffMultiplier,
		clock:             time.Now,
		sleep:             sleepTimer,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WaitForSlot блокируется, пока в окне не появится место для еще одного
// вызова, затем регистрирует вызов. Ожидание реализовано таймером и
// прерывается отменой контекста.
func (l *Limiter) WaitForSlot(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock()
		l.prune(now)

		if len(l.calls) < l.callsPerMinute {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		// Окно заполнено: ждем, пока не истечет самая старая отметка
		wait := l.calls[0].Add(window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RecommendedDelay возвращает превентивную задержку, сглаживающую
// всплески: при загрузке окна выше 80% рекомендуется пауза в размере
// среднего интервала между вызовами, умноженного на backoffMultiplier.
func (l *Limiter) RecommendedDelay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.clock())

	utilization := float64(len(l.calls)) / float64(l.callsPerMinute)
	if utilization <= utilizationThreshold {
		return 0
	}

	spacing := float64(window) / float64(l.callsPerMinute)
	return time.Duration(spacing * l.backoffMultiplier)
}

// Snapshot возвращает текущее состояние окна
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.clock())

	snap := Snapshot{
		CallsInWindow:  len(l.calls),
		CallsPerMinute: l.callsPerMinute,
		Utilization:    float64(len(l.calls)) / float64(l.callsPerMinute),
	}
	if len(l.calls) > 0 {
		snap.OldestCall = l.calls[0]
	}
	return snap
}

// prune удаляет отметки старше окна; вызывается под мьютексом
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-window)
	idx := 0
	for idx < len(l.calls) && !l.calls[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.calls = append(l.calls[:0], l.calls[idx:]...)
	}
}

func sleepTimer(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
