package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/sqlkit/connector"
)

func newPingCommand(logger func(*cobra.Command) hclog.Logger) *cobra.Command {
	var (
		configPath string
		alias      string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Connect to configured databases and report which answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := connector.LoadFile(configPath)
			if err != nil {
				return err
			}

			reg := connector.NewRegistry(connector.WithLogger(logger(cmd)))
			defer reg.Close()

			failed := 0
			matched := 0
			for _, cfg := range cfgs {
				if alias != "" && cfg.Alias != alias {
					continue
				}
				matched++
				if err := ping(cmd.Context(), reg, cfg, timeout); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", cfg.Alias, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", cfg.Alias)
			}
			if matched == 0 {
				return fmt.Errorf("no database configured under alias %q", alias)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d databases unavailable", failed, matched)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "databases.yaml", "YAML file listing databases")
	cmd.Flags().StringVar(&alias, "alias", "", "only ping this alias")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "timeout per database")
	return cmd
}

func ping(ctx context.Context, reg *connector.Registry, cfg connector.Config, timeout time.Duration) error {
	h, err := reg.ConnectConfig(cfg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = h.Conn(ctx)
	return err
}
