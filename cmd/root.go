package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/LanXuage/gping/common"
	"github.com/LanXuage/gping/common/constant"
	"github.com/LanXuage/gping/conn"
	"github.com/LanXuage/gping/ping"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	opts := ping.DefaultOptions()
	var (
		timeout      int64
		interval     int64
		unprivileged bool
		geoipPath    string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "gping [-n count] [-l size] target_name",
		Short: "Send ICMP echo requests to a host. ",
		Long: `gping
Send ICMP ECHO_REQUEST packets to an IPv4 host and report round-trip times. `,
		Version: "0.1.0",
		Args:    cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				os.Setenv("GPING_LOG_LEVEL", "development")
			} else {
				os.Setenv("GPING_LOG_LEVEL", "production")
			}
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Timeout = time.Millisecond * time.Duration(timeout)
			opts.Interval = time.Millisecond * time.Duration(interval)
			opts.Privileged = !unprivileged
			if output != constant.OUTPUT_NORMAL && output != constant.OUTPUT_JSON {
				return fmt.Errorf("unsupported output %q: normal or json", output)
			}
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := common.GetLogger()
			logger.Debug("runE", zap.Any("options", opts), zap.String("output", output))

			target := args[0]
			dst, err := conn.Resolve(target)
			if err != nil {
				return err
			}
			var geo *common.GeoIP
			if geoipPath != "" {
				if geo, err = common.OpenGeoIP(geoipPath); err != nil {
					logger.Warn("geoip disabled", zap.Error(err))
				}
				defer geo.Close()
			}
			session, err := ping.Open(dst, opts)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, session, newReporter(cmd.OutOrStdout(), output, target, dst, geo.Locate(dst)))
		},
	}
	cmd.Flags().IntVarP(&opts.Count, "count", "n", constant.DEFAULT_COUNT, "number of echo requests to send")
	cmd.Flags().IntVarP(&opts.Size, "size", "l", constant.DEFAULT_SIZE, "payload size in bytes")
	cmd.Flags().Int64VarP(&timeout, "timeout", "w", constant.DEFAULT_TIMEOUT.Milliseconds(), "timeout in milliseconds to wait for each reply")
	cmd.Flags().Int64VarP(&interval, "interval", "i", constant.DEFAULT_INTERVAL.Milliseconds(), "delay in milliseconds after each reply")
	cmd.Flags().BoolVarP(&unprivileged, "unprivileged", "u", false, "use an unprivileged icmp datagram socket")
	cmd.Flags().StringVarP(&geoipPath, "geoip", "G", "", "GeoIP2 city database to locate the target")
	cmd.PersistentFlags().StringVarP(&output, "output", "O", constant.OUTPUT_NORMAL, "normal or json")
	cmd.PersistentFlags().BoolP("debug", "D", false, "set debug log level")
	cmd.PersistentFlags().BoolP("version", "V", false, "version for gping")
	return cmd
}

func run(ctx context.Context, session *ping.Session, r *reporter) error {
	r.Start(session.Size)
	session.OnProbe = r.Probe
	err := session.Run(ctx)
	r.Finish(session.Summary())
	return err
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
