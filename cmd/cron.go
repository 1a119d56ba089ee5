package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tiresync/config"
	"tiresync/cron"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := config.InitLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		config.InitRedis()
		log.Info(config.PingRedis())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Jobs()[name]
			if !ok {
				return fmt.Errorf("unknown job: %s", jobName)
			}
			log.Info("running cron job", zap.String("job", name))
			return j.Run(ctx, args...)
		}

		c, err := cron.StartCron(log)
		if err != nil {
			return err
		}
		log.Info("cron scheduler started, press Ctrl+C to exit")
		<-ctx.Done()

		log.Info("stopping cron scheduler, waiting for running jobs")
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
