package retry

import (
	"time"
)

// Количество последних попыток, сохраняемых для каждой операции
const attemptHistoryLimit = 32

// Attempt — запись об одной попытке выполнения операции
type Attempt struct {
	ID           string        `json:"id"`
	OperationID  string        `json:"operation_id"`
	Number       int           `json:"number"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Delay        time.Duration `json:"delay"`
	CircuitState State         `json:"circuit_state"`
	Error        string        `json:"error,omitempty"`
	Succeeded    bool          `json:"succeeded"`
}

// OperationStats — накопленная статистика повторов одной операции.
// Хранится только в памяти процесса.
type OperationStats struct {
	OperationID       string           `json:"operation_id"`
	TotalCalls        int              `json:"total_calls"`
	TotalSuccesses    int              `json:"total_successes"`
	TotalFailures     int              `json:"total_failures"`
	TotalAttempts     int              `json:"total_attempts"`
	CircuitRejections int              `json:"circuit_rejections"`
	TotalDelay        time.Duration    `json:"total_delay"`
	DelayedAttempts   int              `json:"delayed_attempts"`
	Categories        map[Category]int `json:"categories"`
	RecentAttempts    []Attempt        `json:"recent_attempts,omitempty"`
}

// AverageDelay возвращает среднюю задержку между попытками
func (s *OperationStats) AverageDelay() time.Duration {
	if s.DelayedAttempts == 0 {
		return 0
	}
	return s.TotalDelay / time.Duration(s.DelayedAttempts)
}

// OverallStats — агрегированная статистика по всем операциям
type OverallStats struct {
	Operations        int              `json:"operations"`
	TotalCalls        int              `json:"total_calls"`
	TotalSuccesses    int              `json:"total_successes"`
	TotalFailures     int              `json:"total_failures"`
	TotalAttempts     int              `json:"total_attempts"`
	CircuitRejections int              `json:"circuit_rejections"`
	TotalDelay        time.Duration    `json:"total_delay"`
	Categories        map[Category]int `json:"categories"`
}

func newOperationStats(operationID string) *OperationStats {
	return &OperationStats{
		OperationID: operationID,
		Categories:  make(map[Category]int),
	}
}

func (s *OperationStats) recordAttempt(a Attempt) {
	s.TotalAttempts++
	if a.Delay > 0 {
		s.TotalDelay += a.Delay
		s.DelayedAttempts++
	}
	s.RecentAttempts = append(s.RecentAttempts, a)
	if len(s.RecentAttempts) > attemptHistoryLimit {
		s.RecentAttempts = s.RecentAttempts[len(s.RecentAttempts)-attemptHistoryLimit:]
	}
}

func (s *OperationStats) clone() OperationStats {
	out := *s
	out.Categories = make(map[Category]int, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.RecentAttempts = append([]Attempt(nil), s.RecentAttempts...)
	return out
}
