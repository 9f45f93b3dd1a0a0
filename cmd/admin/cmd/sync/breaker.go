// cmd/admin/cmd/sync/breaker.go
package sync

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
	"storesync/internal/retry"
)

// BreakerCmd показывает состояние предохранителя операции.
var BreakerCmd = &cobra.Command{
	Use:   "breaker <operation-id>",
	Short: "Состояние предохранителя операции",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		status, err := app.BreakerStatus(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения состояния предохранителя: %w", err)
		}

		printBreaker(status)
		return nil
	},
}

// BreakerResetCmd принудительно закрывает предохранитель.
var BreakerResetCmd = &cobra.Command{
	Use:   "reset <operation-id>",
	Short: "Сбросить предохранитель операции",
	Long: `Принудительно закрывает предохранитель, разрешая вызовы операции
до следующей серии отказов. Используйте после устранения причины сбоев.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		if err := app.ResetBreaker(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка сброса предохранителя: %w", err)
		}

		color.Green("✓ Предохранитель %s сброшен", args[0])
		return nil
	},
}

func printBreaker(status *retry.BreakerStatus) {
	fmt.Printf("Операция: %s\n", status.OperationID)

	switch status.State {
	case retry.StateClosed:
		color.Green("Состояние: closed")
	case retry.StateHalfOpen:
		color.Yellow("Состояние: half-open")
	default:
		color.Red("Состояние: open")
	}

	fmt.Printf("Отказов подряд: %d\n", status.ConsecutiveFailures)
	fmt.Printf("Вызовов: %d (успешных %d)\n", status.TotalCalls, status.TotalSuccesses)

	if !status.LastFailureAt.IsZero() {
		fmt.Printf("Последний отказ: %s\n", status.LastFailureAt.Local().Format(time.DateTime))
	}
	if !status.ReopenAt.IsZero() {
		fmt.Printf("Полуоткрытие: %s\n", status.ReopenAt.Local().Format(time.DateTime))
	}
}
