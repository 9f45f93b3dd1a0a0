// cmd/admin/cmd/store/list.go
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
	"storesync/internal/domain/sync"
)

var (
	listFormat string
)

// ListCmd выводит список зарегистрированных магазинов.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список магазинов",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		stores, err := app.ListStores(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка магазинов: %w", err)
		}

		switch listFormat {
		case "json":
			return printStoresJSON(os.Stdout, stores)
		default:
			return printStoresTable(os.Stdout, stores)
		}
	},
}

func printStoresJSON(out io.Writer, stores []sync.Store) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(stores)
}

func printStoresTable(out io.Writer, stores []sync.Store) error {
	if len(stores) == 0 {
		fmt.Fprintln(out, "Магазины не зарегистрированы")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tДОМЕН\tПОСЛЕДНЯЯ СИНХРОНИЗАЦИЯ")

	for _, s := range stores {
		marker := "никогда"
		if !s.LastSyncMarker.IsZero() {
			marker = s.LastSyncMarker.Local().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Domain, marker)
	}

	return w.Flush()
}
