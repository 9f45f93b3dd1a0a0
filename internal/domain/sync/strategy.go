package sync

import "time"

// Thresholds — границы возраста маркера для выбора стратегии
type Thresholds struct {
	// IncrementalWindow — максимальный возраст маркера, при котором
	// фильтрации платформы еще доверяем без сверки
	IncrementalWindow time.Duration
	// FullAfter — возраст маркера, после которого данные считаются
	// устаревшими и требуют полной выгрузки
	FullAfter time.Duration
}

// SelectStrategy выбирает стратегию по возрасту маркера последней
// синхронизации. Принудительный флаг и отсутствие маркера дают полную
// выгрузку независимо от возраста.
func SelectStrategy(marker time.Time, forceFull bool, now time.Time, th Thresholds) Strategy {
	if forceFull || marker.IsZero() {
		return StrategyFull
	}
	age := now.Sub(marker)
	switch {
	case age <= th.IncrementalWindow:
		return StrategyIncremental
	case age <= th.FullAfter:
		return StrategyDelta
	default:
		return StrategyFull
	}
}
