package cli

import (
	"errors"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pmaojo/apicentric-sub001/pkg/recorder"
)

var (
	recordTarget       string
	recordOutput       string
	recordPort         int
	recordServiceName  string
	recordIncludeHosts []string
	recordExcludeHosts []string
	recordIncludePaths []string
	recordExcludePaths []string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Forward traffic to a real upstream and record it as a service definition",
	Long: `Starts a transparent forwarding proxy in front of the target URL. Every
request is forwarded and its real response relayed back while the proxy
builds a generalized service definition from the observed traffic.
On interrupt the definition is written as YAML under the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := url.Parse(recordTarget)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return errors.New("--target must be an absolute http(s) URL")
		}

		var filter *recorder.Filter
		if len(recordIncludeHosts)+len(recordExcludeHosts)+
			len(recordIncludePaths)+len(recordExcludePaths) > 0 {
			filter = &recorder.Filter{
				IncludeHosts: recordIncludeHosts,
				ExcludeHosts: recordExcludeHosts,
				IncludePaths: recordIncludePaths,
				ExcludePaths: recordExcludePaths,
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return recorder.Record(ctx, recorder.Options{
			Target:      target,
			OutputDir:   recordOutput,
			Port:        recordPort,
			Filter:      filter,
			ServiceName: recordServiceName,
			Logger:      newLogger(),
		})
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordTarget, "target", "", "Upstream base URL to forward to (required)")
	recordCmd.Flags().StringVar(&recordOutput, "output", ".", "Directory the recorded YAML is written to")
	recordCmd.Flags().IntVar(&recordPort, "port", 4040, "Port the proxy listens on")
	recordCmd.Flags().StringVar(&recordServiceName, "service-name", "", "Name of the recorded service definition")
	recordCmd.Flags().StringSliceVar(&recordIncludeHosts, "include-host", nil, "Record only matching hosts (glob, repeatable)")
	recordCmd.Flags().StringSliceVar(&recordExcludeHosts, "exclude-host", nil, "Never record matching hosts (glob, repeatable)")
	recordCmd.Flags().StringSliceVar(&recordIncludePaths, "include-path", nil, "Record only matching paths (glob, repeatable)")
	recordCmd.Flags().StringSliceVar(&recordExcludePaths, "exclude-path", nil, "Never record matching paths (glob, repeatable)")
	_ = recordCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(recordCmd)
}
