// cmd/admin/cmd/store/register.go
package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
)

// RegisterCmd регистрирует магазин на сервере синхронизации.
var RegisterCmd = &cobra.Command{
	Use:   "register <store-id> <domain>",
	Short: "Зарегистрировать магазин",
	Long: `Регистрация магазина торговой платформы на сервере синхронизации.

Токен доступа запрашивается интерактивно и не отображается на экране.
Сервер хранит токен в зашифрованном виде.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.AdminAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("приложение не инициализировано")
		}

		storeID, domain := args[0], args[1]

		// Запрашиваем токен доступа
		fmt.Print("Токен доступа к API платформы: ")
		token, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения токена: %w", err)
		}
		fmt.Println()

		if len(strings.TrimSpace(string(token))) == 0 {
			return fmt.Errorf("токен доступа не может быть пустым")
		}

		err = app.RegisterStore(cmd.Context(), client.RegisterStoreRequest{
			ID:          storeID,
			Domain:      domain,
			AccessToken: string(token),
		})
		if err != nil {
			return fmt.Errorf("ошибка регистрации магазина: %w", err)
		}

		color.Green("✓ Магазин %s (%s) зарегистрирован", storeID, domain)
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Printf("1. Запустите первую синхронизацию: storesync sync run %s\n", storeID)
		fmt.Printf("2. Проверьте историю: storesync sync history %s\n", storeID)

		return nil
	},
}
