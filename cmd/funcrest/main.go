// Command funcrest invokes the demo item catalog router locally with raw
// HTTP trigger invocations, the way the platform would.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/bjaus/funcrest"
	"github.com/bjaus/funcrest/promhooks"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "funcrest",
		Short:         "Invoke a funcrest router locally",
		Long:          "Invoke the demo item catalog router with raw HTTP trigger invocations.\n\nEnvironment:\n" + configUsage(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		invokeCmd(),
		routesCmd(),
		metricsCmd(),
	)
	return root
}

// buildRouter creates the demo router. A non-nil reg receives its metrics.
func buildRouter(cfg Config, logs io.Writer, reg prometheus.Registerer) (*funcrest.Router, error) {
	opts, err := cfg.RouterOptions(logs)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		m, err := promhooks.New(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, m.Options()...)
	}

	r := funcrest.New(opts...)
	newCatalog().register(r)
	return r, nil
}

type invokeFlags struct {
	function string
	dir      string
}

func (f *invokeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.function, "function", "catalog", "Function name")
	cmd.Flags().StringVar(&f.dir, "dir", ".", "Function directory holding function.json")
}

// invoke runs one raw invocation read from args against r.
func (f *invokeFlags) invoke(cmd *cobra.Command, r *funcrest.Router, args []string) (funcrest.Wire, error) {
	raw, err := readInvocation(cmd.InOrStdin(), args)
	if err != nil {
		return funcrest.Wire{}, err
	}
	return r.DispatchRaw(cmd.Context(), raw, funcrest.NewFunctionContext(f.function, f.dir))
}

func invokeCmd() *cobra.Command {
	var flags invokeFlags

	cmd := &cobra.Command{
		Use:   "invoke [file]",
		Short: "Dispatch a raw invocation and print the response",
		Long:  "Reads a raw invocation from file, or stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, err := buildRouter(cfg, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}

			w, err := flags.invoke(cmd, r, args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(w)
		},
	}
	flags.bind(cmd)
	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the registered routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, err := buildRouter(cfg, io.Discard, nil)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tPATTERN\tSCHEMA")
			for _, rt := range r.Routes() {
				schema := "-"
				if rt.HasSchema() {
					schema = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Method, rt.Pattern, schema)
			}
			return tw.Flush()
		},
	}
}

func metricsCmd() *cobra.Command {
	var flags invokeFlags

	cmd := &cobra.Command{
		Use:   "metrics [file]",
		Short: "Dispatch a raw invocation and print the resulting metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			r, err := buildRouter(cfg, cmd.ErrOrStderr(), reg)
			if err != nil {
				return err
			}

			if _, err := flags.invoke(cmd, r, args); err != nil {
				return err
			}

			families, err := reg.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			enc := expfmt.NewEncoder(cmd.OutOrStdout(), expfmt.NewFormat(expfmt.TypeTextPlain))
			for _, mf := range families {
				if err := enc.Encode(mf); err != nil {
					return fmt.Errorf("encode metrics: %w", err)
				}
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func readInvocation(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read invocation: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read invocation: %w", err)
	}
	return raw, nil
}
