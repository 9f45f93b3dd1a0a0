// cmd/admin/cmd/store/store.go
package store

import (
	"github.com/spf13/cobra"
)

// StoreCmd — родительская команда управления магазинами.
var StoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Управление магазинами",
	Long:  `Регистрация магазинов торговой платформы и просмотр их состояния.`,
}

func init() {
	ListCmd.Flags().StringVar(&listFormat, "format", "table", "формат вывода (table, json)")

	SearchCmd.Flags().IntVar(&searchLimit, "limit", 0, "максимум результатов")
}
