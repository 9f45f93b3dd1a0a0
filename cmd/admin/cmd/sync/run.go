// cmd/admin/cmd/sync/run.go
package sync

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
	"storesync/internal/domain/entity"
	domainsync "storesync/internal/domain/sync"
)

var (
	runEntityTypes     []string
	runForceFull       bool
	runConflictPolicy  string
	runIgnoreRateLimit bool
)

// RunCmd запускает синхронизацию магазина и ждет результата.
var RunCmd = &cobra.Command{
	Use:   "run <store-id>",
	Short: "Запустить синхронизацию магазина",
	Long: `Запуск синхронизации магазина с торговой платформой.

Стратегия (полная, инкрементальная или дельта) выбирается сервером
по возрасту маркера последней синхронизации. Флаг --full принудительно
запускает полную выгрузку.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		req := client.TriggerSyncRequest{
			ForceFullSync:   runForceFull,
			ConflictPolicy:  domainsync.ConflictPolicy(runConflictPolicy),
			IgnoreRateLimit: runIgnoreRateLimit,
		}
		for _, t := range runEntityTypes {
			req.EntityTypes = append(req.EntityTypes, entity.Type(t))
		}

		fmt.Printf("Синхронизация магазина %s...\n", args[0])

		outcome, err := app.TriggerSync(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		printOutcome(outcome)

		if !outcome.Success {
			return fmt.Errorf("синхронизация завершилась с ошибкой: %s", outcome.Error)
		}

		return nil
	},
}

func printOutcome(o *domainsync.Outcome) {
	fmt.Println()
	if o.Success {
		color.Green("✓ Синхронизация завершена (%s)", o.StrategyUsed)
	} else {
		color.Red("✗ Синхронизация не удалась (%s)", o.StrategyUsed)
	}

	fmt.Printf("Длительность: %s\n", o.FinishedAt.Sub(o.StartedAt).Round(time.Millisecond))
	fmt.Printf("Обработано: %d, вызовов API: %d\n", o.TotalItemsProcessed, o.TotalAPICalls)

	for _, r := range o.PerEntityResults {
		status := color.GreenString("ok")
		if r.Error != "" {
			status = color.RedString(r.Error)
		}
		fmt.Printf("  %-10s создано %d, обновлено %d, ошибок %d — %s\n",
			r.EntityType, r.ItemsCreated, r.ItemsUpdated, r.ItemsFailed, status)
	}

	if !o.NewSyncMarker.IsZero() {
		fmt.Printf("Новый маркер: %s\n", o.NewSyncMarker.Format(time.RFC3339))
	}
}
