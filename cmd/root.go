package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "github.com/Oumaima1mal/task-pilot-front/internal/configs"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "task-pilot",
	Short:         "Task pilot client runtime",
	Long:          "Keeps tasks, groups and notifications in sync with the task management backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg = config.Load()
		logging.Init(cfg.LogLevel, cfg.LogFile)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Logger.Error(err)
		os.Exit(1)
	}
}
