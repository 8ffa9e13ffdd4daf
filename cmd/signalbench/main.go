// signalbench turns a daily price history into model-driven long/flat
// positions and compares the strategy against buy-and-hold.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"SignalBench/internal/notifier"
)

var (
	version = "dev"

	cfgPath    string
	csvPath    string
	symbol     string
	outPath    string
	runOnStart bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:          "signalbench",
		Short:        "Daily price strategy research pipeline",
		SilenceUsage: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "Read bars from this CSV file instead of the configured source")
	rootCmd.PersistentFlags().StringVarP(&symbol, "symbol", "s", "", "Instrument symbol (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Write per-bar records to this CSV file (overrides config)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("signalbench version %s\n", version)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := a.sched.RunNow(ctx)
			if err != nil {
				return fmt.Errorf("run %s: %w", a.cfg.DataSource.Symbol, err)
			}
			fmt.Printf("SignalBench %s | run %s | %s\n\n", res.Symbol, res.ID, res.Duration.Round(time.Millisecond))
			fmt.Print(notifier.FormatSummary(res))
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the pipeline on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a.sched.Ctx = ctx

			if err := a.sched.Register(a.cfg.Schedule.Cron); err != nil {
				return err
			}
			a.sched.Start()
			defer a.sched.Stop()

			if a.metricsSrv != nil {
				a.metricsSrv.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := a.metricsSrv.Stop(shutdownCtx); err != nil {
						log.Printf("[WARN] metrics server shutdown: %v", err)
					}
				}()
			}

			if a.telegram != nil {
				go a.telegram.StartPolling(ctx, a.sched.HandleCommand)
				log.Println("[INFO] Telegram polling started")
			}

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] run on start enabled, executing now")
				go a.sched.RunNow(ctx)
			}

			log.Printf("[INFO] SignalBench is watching %s on %q. Press Ctrl+C to stop.",
				a.cfg.DataSource.Symbol, a.cfg.Schedule.Cron)
			<-ctx.Done()
			log.Println("[INFO] shutdown signal received, stopping...")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run once immediately after starting")
	return cmd
}
