// cmd/admin/cmd/init.go
package cmd

import (
	"fmt"

	"storesync/cmd/admin/cmd/store"
	"storesync/cmd/admin/cmd/sync"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Проверить доступность сервера",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.CheckConnection(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Сервер доступен")
		return nil
	},
}

func init() {
	// Команды работы с магазинами
	rootCmd.AddCommand(store.StoreCmd)
	store.StoreCmd.AddCommand(store.RegisterCmd)
	store.StoreCmd.AddCommand(store.ListCmd)
	store.StoreCmd.AddCommand(store.SearchCmd)

	// Команды синхронизации
	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.RunCmd)
	sync.SyncCmd.AddCommand(sync.HistoryCmd)
	sync.SyncCmd.AddCommand(sync.StatsCmd)
	sync.SyncCmd.AddCommand(sync.BreakerCmd)
	sync.BreakerCmd.AddCommand(sync.BreakerResetCmd)

	rootCmd.AddCommand(healthCmd)
}
