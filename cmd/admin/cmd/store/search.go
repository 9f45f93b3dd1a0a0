// cmd/admin/cmd/store/search.go
package store

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
)

var (
	searchLimit int
)

// SearchCmd ищет по локальной копии данных магазина.
var SearchCmd = &cobra.Command{
	Use:   "search <store-id> <query>",
	Short: "Поиск по локальной копии магазина",
	Long: `Полнотекстовый поиск по синхронизированным товарам, заказам и клиентам.

Поиск выполняется по локальному индексу без обращения к платформе.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		matches, err := app.Search(cmd.Context(), args[0], args[1], searchLimit)
		if err != nil {
			return fmt.Errorf("ошибка поиска: %w", err)
		}

		if len(matches) == 0 {
			fmt.Println("Ничего не найдено")
			return nil
		}

		fmt.Printf("Найдено: %d\n\n", len(matches))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ТИП\tID\tТЕКСТ")
		for _, m := range matches {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.EntityType, m.ExternalID, truncate(m.Text, 60))
		}

		return w.Flush()
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
