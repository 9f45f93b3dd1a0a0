package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// NoRetries в MaxRetries переопределения отключает повторы для вызова:
// значение 0 означает "не переопределять", поэтому нужен отдельный маркер.
const NoRetries = -1

// Config — параметры повторов и предохранителя. Любое поле можно
// переопределить для отдельного вызова через ExecuteWith.
type Config struct {
	MaxRetries          int
	BaseDelay           time.Duration
	MaxDelay            time.Duration
	ExponentialBase     float64
	JitterFactor        float64
	BreakerThreshold    int
	BreakerTimeout      time.Duration
	RetryableMarkers    []string
	NonRetryableMarkers []string
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:          3,
		BaseDelay:           time.Second,
		MaxDelay:            30 * time.Second,
		ExponentialBase:     2,
		JitterFactor:        0.1,
		BreakerThreshold:    5,
		BreakerTimeout:      time.Minute,
		RetryableMarkers:    defaultRetryableMarkers,
		NonRetryableMarkers: defaultNonRetryableMarkers,
	}
}

// merged накладывает ненулевые поля override на базовую конфигурацию
func (c *Config) merged(override *Config) *Config {
	if override == nil {
		return c
	}
	out := *c
	if override.MaxRetries > 0 {
		out.MaxRetries = override.MaxRetries
	} else if override.MaxRetries == NoRetries {
		out.MaxRetries = 0
	}
	if override.BaseDelay > 0 {
		out.BaseDelay = override.BaseDelay
	}
	if override.MaxDelay > 0 {
		out.MaxDelay = override.MaxDelay
	}
	if override.ExponentialBase > 0 {
		out.ExponentialBase = override.ExponentialBase
	}
	if override.JitterFactor > 0 {
		out.JitterFactor = override.JitterFactor
	}
	if override.BreakerThreshold > 0 {
		out.BreakerThreshold = override.BreakerThreshold
	}
	if override.BreakerTimeout > 0 {
		out.BreakerTimeout = override.BreakerTimeout
	}
	if override.RetryableMarkers != nil {
		out.RetryableMarkers = override.RetryableMarkers
	}
	if override.NonRetryableMarkers != nil {
		out.NonRetryableMarkers = override.NonRetryableMarkers
	}
	return &out
}

// Executor выполняет операции с экспоненциальными повторами и
// предохранителем на каждую операцию. Предохранители и статистика
// разделяются всеми вызывающими и защищены мьютексом; состояние
// живет только в памяти процесса.
//
// Предохранитель имеет смысл, только если operationID стабилен между
// вызовами одной и той же логической операции (например,
// "{storeID}:{entityType}"). Идентификатор с временной меткой даст
// каждому вызову собственный независимый предохранитель.
type Executor struct {
	cfg *Config
	log *slog.Logger

	random func() float64
	clock  func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	breakers map[string]*breaker
	stats    map[string]*OperationStats
}

// Option настраивает исполнитель (подмена источника случайности,
// часов и ожидания в тестах)
type Option func(*Executor)

func WithRandom(random func() float64) Option {
	return func(e *Executor) { e.random = random }
}

func WithClock(clock func() time.Time) Option {
	return func(e *Executor) { e.clock = clock }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// New создает исполнитель повторов. Списки маркеров ошибок в частично
// заполненной конфигурации дополняются значениями по умолчанию, иначе
// классификатор считал бы каждую ошибку неизвестной.
func New(cfg *Config, log *slog.Logger, opts ...Option) *Executor {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		c := *cfg
		cfg = &c
	}
	if cfg.RetryableMarkers == nil {
		cfg.RetryableMarkers = defaultRetryableMarkers
	}
	if cfg.NonRetryableMarkers == nil {
		cfg.NonRetryableMarkers = defaultNonRetryableMarkers
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	e := &Executor{
		cfg:      cfg,
		log:      log.With(slog.String("component", "retry_executor")),
		random:   rand.Float64,
		clock:    time.Now,
		sleep:    sleepTimer,
		breakers: make(map[string]*breaker),
		stats:    make(map[string]*OperationStats),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute выполняет операцию с конфигурацией исполнителя по умолчанию
func Execute[T any](ctx context.Context, e *Executor, operationID string, op func(context.Context) (T, error)) (T, error) {
	return ExecuteWith(ctx, e, operationID, op, nil)
}

// ExecuteWith выполняет операцию с повторами и предохранителем.
// Возвращает последнюю ошибку, когда повторы исчерпаны, ошибка
// классифицирована как неretryable или предохранитель разомкнут.
func ExecuteWith[T any](ctx context.Context, e *Executor, operationID string, op func(context.Context) (T, error), override *Config) (T, error) {
	var zero T

	cfg := e.cfg.merged(override)

	if err := e.allowCall(operationID); err != nil {
		return zero, err
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		var delay time.Duration
		if attempt > 0 {
			delay = backoffDelay(cfg, attempt-1, e.random)
			e.log.Debug("retrying operation",
				slog.String("operation_id", operationID),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
			)
			if err := e.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		startedAt := e.clock()
		state := e.breakerState(operationID)
		v, err := op(ctx)
		finishedAt := e.clock()

		a := Attempt{
			ID:           uuid.NewString(),
			OperationID:  operationID,
			Number:       attempt + 1,
			StartedAt:    startedAt,
			FinishedAt:   finishedAt,
			Delay:        delay,
			CircuitState: state,
			Succeeded:    err == nil,
		}

		if err == nil {
			e.recordSuccess(operationID, a)
			return v, nil
		}

		a.Error = err.Error()
		category, retryable := Classify(err, cfg)
		e.recordAttempt(operationID, a, category)
		lastErr = err

		if !retryable {
			e.log.Debug("non-retryable error, aborting",
				slog.String("operation_id", operationID),
				slog.String("category", string(category)),
				slog.String("error", err.Error()),
			)
			break
		}
	}

	e.recordFailure(operationID, cfg)
	return zero, lastErr
}

// Do — вариант для операций без возвращаемого значения
func (e *Executor) Do(ctx context.Context, operationID string, op func(context.Context) error, override *Config) error {
	_, err := ExecuteWith(ctx, e, operationID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, override)
	return err
}

// Stats возвращает копию статистики операции
func (e *Executor) Stats(operationID string) (OperationStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stats[operationID]
	if !ok {
		return OperationStats{}, false
	}
	return s.clone(), true
}

// OverallStats возвращает агрегированную статистику всех операций
func (e *Executor) OverallStats() OverallStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := OverallStats{Categories: make(map[Category]int)}
	for _, s := range e.stats {
		out.Operations++
		out.TotalCalls += s.TotalCalls
		out.TotalSuccesses += s.TotalSuccesses
		out.TotalFailures += s.TotalFailures
		out.TotalAttempts += s.TotalAttempts
		out.CircuitRejections += s.CircuitRejections
		out.TotalDelay += s.TotalDelay
		for k, v := range s.Categories {
			out.Categories[k] += v
		}
	}
	return out
}

// BreakerStatus возвращает снимок предохранителя операции
func (e *Executor) BreakerStatus(operationID string) (BreakerStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.breakers[operationID]
	if !ok {
		return BreakerStatus{}, false
	}
	return b.status(operationID), true
}

// ResetBreaker принудительно замыкает предохранитель операции
func (e *Executor) ResetBreaker(operationID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.breakers[operationID]
	if !ok {
		return false
	}
	b.reset()
	return true
}

// backoffDelay вычисляет задержку перед повтором:
// min(base × mult^attemptIndex + jitter, max),
// где jitter = base × mult^attemptIndex × jitterFactor × random(0,1)
func backoffDelay(cfg *Config, attemptIndex int, random func() float64) time.Duration {
	raw := float64(cfg.BaseDelay) * math.Pow(cfg.ExponentialBase, float64(attemptIndex))
	jitter := raw * cfg.JitterFactor * random()
	total := raw + jitter
	if total > float64(cfg.MaxDelay) {
		total = float64(cfg.MaxDelay)
	}
	return time.Duration(total)
}

func (e *Executor) allowCall(operationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.breakers[operationID]
	if !ok {
		b = newBreaker()
		e.breakers[operationID] = b
	}

	if !b.allow(e.clock()) {
		s := e.statsLocked(operationID)
		s.CircuitRejections++
		return fmt.Errorf("%w: operation %q rejected until %s",
			ErrCircuitOpen, operationID, b.reopenAt.Format(time.RFC3339))
	}
	return nil
}

func (e *Executor) breakerState(operationID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[operationID]; ok {
		return b.state
	}
	return StateClosed
}

func (e *Executor) recordSuccess(operationID string, a Attempt) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[operationID]; ok {
		b.onSuccess()
	}
	s := e.statsLocked(operationID)
	s.TotalCalls++
	s.TotalSuccesses++
	s.recordAttempt(a)
}

func (e *Executor) recordAttempt(operationID string, a Attempt, category Category) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.statsLocked(operationID)
	s.Categories[category]++
	s.recordAttempt(a)
}

func (e *Executor) recordFailure(operationID string, cfg *Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[operationID]; ok {
		b.onFailure(e.clock(), cfg.BreakerThreshold, cfg.BreakerTimeout)
	}
	s := e.statsLocked(operationID)
	s.TotalCalls++
	s.TotalFailures++
}

func (e *Executor) statsLocked(operationID string) *OperationStats {
	s, ok := e.stats[operationID]
	if !ok {
		s = newOperationStats(operationID)
		e.stats[operationID] = s
	}
	return s
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
