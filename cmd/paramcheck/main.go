// Command paramcheck resolves request parameters against a YAML schema.
//
//	paramcheck resolve -f schema.yaml q=shoes ids=1 ids=2
//	paramcheck jsonschema -f schema.yaml
//	paramcheck serve -f schema.yaml --addr :8080
//
// Schema defaults may be tuned with the PARAMS_* environment variables.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjaus/params"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	file    string
	verbose bool
	stdin   io.Reader
	logger  *slog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin}

	root := &cobra.Command{
		Use:           "paramcheck",
		Short:         "Resolve request parameters against a schema file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Path to the schema file (- for stdin)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	//nolint:errcheck // flag exists
	root.MarkPersistentFlagRequired("file")

	root.AddCommand(newResolveCmd(a), newJSONSchemaCmd(a), newServeCmd(a))
	return root
}

// schema loads the schema file with the environment config applied.
func (a *app) schema() (*params.Schema, error) {
	cfg, err := params.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	var r io.Reader = a.stdin
	if a.file != "-" {
		f, err := os.Open(a.file)
		if err != nil {
			return nil, fmt.Errorf("open schema: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	return params.LoadSchema(r, params.WithConfig(cfg), params.WithLogger(a.logger))
}
