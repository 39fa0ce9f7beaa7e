package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statistics HTTP API",
	Long: `The 'serve' command starts the HTTP API exposing /api/calculate, /api/histogram,
/api/upload-csv and /api/health. It stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 5000, "port to listen on")
	serveCmd.Flags().String("upload-dir", "uploads", "directory for transient CSV uploads")
	viper.BindPFlag("PORT", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("UPLOAD_DIR", serveCmd.Flags().Lookup("upload-dir"))
}
