// cmd/admin/cmd/sync/stats.go
package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
)

// StatsCmd показывает статистику повторных попыток и ограничителя частоты.
var StatsCmd = &cobra.Command{
	Use:   "stats [operation-id]",
	Short: "Статистика повторных попыток",
	Long: `Сводная статистика повторных попыток по всем операциям, либо
детальная статистика одной операции. Идентификатор операции имеет вид
"<домен магазина>:<тип сущности>", например demo.example.com:catalog_item.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		if len(args) == 1 {
			return printOperationStats(cmd, app, args[0])
		}

		stats, err := app.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения статистики: %w", err)
		}

		limit, err := app.RateLimit(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения состояния ограничителя: %w", err)
		}

		fmt.Println("=== Повторные попытки ===")
		fmt.Printf("Операций: %d\n", stats.Operations)
		fmt.Printf("Вызовов: %d (успешных %d, неудачных %d)\n",
			stats.TotalCalls, stats.TotalSuccesses, stats.TotalFailures)
		fmt.Printf("Попыток: %d, отклонено предохранителем: %d\n",
			stats.TotalAttempts, stats.CircuitRejections)
		fmt.Printf("Суммарная задержка: %s\n", stats.TotalDelay)

		if len(stats.Categories) > 0 {
			fmt.Println("По категориям ошибок:")
			for category, count := range stats.Categories {
				fmt.Printf("  %-16s %d\n", category, count)
			}
		}

		fmt.Println()
		fmt.Println("=== Ограничитель частоты ===")
		fmt.Printf("В окне: %d из %d (%.0f%%)\n",
			limit.CallsInWindow, limit.CallsPerMinute, limit.Utilization*100)

		return nil
	},
}

func printOperationStats(cmd *cobra.Command, app *client.App, operationID string) error {
	stats, err := app.OperationStats(cmd.Context(), operationID)
	if err != nil {
		return fmt.Errorf("ошибка получения статистики операции: %w", err)
	}

	fmt.Printf("Операция: %s\n", stats.OperationID)
	fmt.Printf("Вызовов: %d (успешных %d, неудачных %d)\n",
		stats.TotalCalls, stats.TotalSuccesses, stats.TotalFailures)
	fmt.Printf("Попыток: %d, отклонено предохранителем: %d\n",
		stats.TotalAttempts, stats.CircuitRejections)
	fmt.Printf("Средняя задержка: %s\n", stats.AverageDelay())

	if len(stats.Categories) > 0 {
		fmt.Println("По категориям ошибок:")
		for category, count := range stats.Categories {
			fmt.Printf("  %-16s %d\n", category, count)
		}
	}

	return nil
}
