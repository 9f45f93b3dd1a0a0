// cmd/admin/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/slog"

	"storesync/cmd/admin/cmd/types"
	"storesync/internal/app/client"
	"storesync/internal/utils/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	log        *slog.Logger
	app        *client.App
	debug      bool
	jsonOutput bool
	serverAddr string
	enableTLS  bool
)

var rootCmd = &cobra.Command{
	Use:   "storesync",
	Short: "Storesync - управление синхронизацией магазинов",
	Long: `Storesync — административный клиент сервера синхронизации.

Позволяет регистрировать магазины торговой платформы, запускать
синхронизацию каталога, заказов и клиентов, искать по локальной копии
и следить за статистикой повторных попыток и предохранителей.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	address := viper.GetString("server_address")
	if serverAddr != "" {
		address = serverAddr
	}
	if address == "" {
		address = "localhost:8080"
	}

	env := "production"
	if debug {
		env = "local"
	}
	log = logger.New(env)

	app = client.New(address, enableTLS, log)

	// Делаем клиент доступным подкомандам через контекст
	cmd.SetContext(context.WithValue(cmd.Context(), types.AdminAppKey, app))

	return nil
}

func loadConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Ищем конфиг в стандартных местах
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		configDir := filepath.Join(home, ".storesync")
		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigName("admin")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return nil
}

func init() {
	cobra.OnInitialize()

	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "адрес сервера Storesync")
	rootCmd.PersistentFlags().BoolVar(&enableTLS, "tls", false, "использовать HTTPS")

	// Команды будут добавлены в init() соответствующих файлов
}
