// cmd/admin/cmd/sync/history.go
package sync

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
)

var (
	historyLimit int
)

// HistoryCmd выводит историю синхронизаций магазина.
var HistoryCmd = &cobra.Command{
	Use:   "history <store-id>",
	Short: "История синхронизаций магазина",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		entries, err := app.SyncHistory(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return fmt.Errorf("ошибка получения истории: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("История пуста")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "НАЧАЛО\tСТРАТЕГИЯ\tСТАТУС\tОБРАБОТАНО\tСОЗДАНО\tОБНОВЛЕНО\tAPI")

		for _, e := range entries {
			status := "ok"
			if !e.Success {
				status = "ошибка"
				if e.Error != "" {
					status = e.Error
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				e.StartedAt.Local().Format(time.DateTime), e.Strategy, status,
				e.ItemsProcessed, e.ItemsCreated, e.ItemsUpdated, e.APICalls)
		}

		return w.Flush()
	},
}
