// cmd/admin/cmd/sync/sync.go
package sync

import (
	"github.com/spf13/cobra"
)

// SyncCmd — родительская команда управления синхронизацией.
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long:  `Запуск синхронизации магазинов, просмотр истории и статистики.`,
}

func init() {
	RunCmd.Flags().StringSliceVar(&runEntityTypes, "types", nil, "типы сущностей (catalog_item, order, customer, store_metadata); пусто — все")
	RunCmd.Flags().BoolVar(&runForceFull, "full", false, "принудительная полная синхронизация")
	RunCmd.Flags().StringVar(&runConflictPolicy, "conflict-policy", "", "политика конфликтов (store_wins, latest_timestamp_wins, merge)")
	RunCmd.Flags().BoolVar(&runIgnoreRateLimit, "ignore-rate-limit", false, "не ждать слотов ограничителя частоты")

	HistoryCmd.Flags().IntVar(&historyLimit, "limit", 0, "максимум записей")
}
