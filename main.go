package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	c "github.com/mproffitt/printagent/pkg/config"
	h "github.com/mproffitt/printagent/pkg/handler"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var filename string

	rootCmd := &cobra.Command{
		Use:           "printagent",
		Short:         "Print documents dropped into watched folders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&filename, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(newRunCommand(&filename))
	rootCmd.AddCommand(newValidateCommand(&filename))
	return rootCmd
}

func loadConfig(filename string) (*c.Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: config file must be provided", c.ErrInvalidConfig)
	}
	return c.New(filename)
}

func newRunCommand(filename *string) *cobra.Command {
	var watchConfig bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the configured folders until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(*filename)
			if err != nil {
				return err
			}
			if err = config.SetupLogging(); err != nil {
				return err
			}
			log.Debug(fmt.Sprintf("%+v", config))

			lock := flock.New(config.LockFile)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", config.LockFile, err)
			}
			if !ok {
				return errors.New("another printagent instance is already running")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					log.Warnf("Failed to release lock %s - %s", config.LockFile, err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			service, err := h.New(config)
			if err != nil {
				return err
			}

			log.Info("Starting watchers")
			if err = service.Start(ctx); err != nil {
				return err
			}

			if watchConfig {
				go func() {
					if err := c.Watch(ctx, *filename); err != nil {
						log.Warnf("Unable to watch config file %s - %s", *filename, err)
					}
				}()
			}

			<-ctx.Done()
			service.Stop()
			log.Info("Done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "Warn when the config file changes on disk")
	return cmd
}

func newValidateCommand(filename *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and print the folder to printer mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(*filename)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			s := config.Settings()
			for _, f := range config.Folders {
				fmt.Fprintf(out, "%s -> %s\n", f.Path, f.Printer)
			}
			fmt.Fprintf(out, "archive: %s\nagent: %s\nsettle delay: %s\ndispatch timeout: %s\n",
				s.ArchiveFolder, s.PrinterAgent, s.SettleDelay, s.DispatchTimeout)
			return nil
		},
	}
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("printagent: %s", err)
	}
}
