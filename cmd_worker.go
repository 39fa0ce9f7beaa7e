package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process stored datasets from the Redis queue",
	Long: `The 'worker' command listens on queue:<WORKER_QUEUE> for StatisticsJob payloads
and computes statistics and histograms for the referenced Postgres datasets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		return runService(ctx, db, cfg)
	},
}

var processCmd = &cobra.Command{
	Use:   "process <dataset-id>",
	Short: "Process one stored dataset",
	Long:  `The 'process' command computes and stores statistics and a histogram for a single Postgres dataset.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid dataset id %q", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		return processDataset(ctx, db, cfg, id)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(processCmd)
	workerCmd.Flags().StringP("queue", "q", "default", "queue name (without the queue: prefix)")
	viper.BindPFlag("WORKER_QUEUE", workerCmd.Flags().Lookup("queue"))
}
