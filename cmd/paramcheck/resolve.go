package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bjaus/params"
)

var errRejected = errors.New("parameters rejected")

func newResolveCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve [name=value ...]",
		Short: "Resolve name=value pairs and print the resolved options",
		Long: `Resolve name=value pairs as if they were query parameters. Repeat a
name, or suffix it with [], to pass a list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			return runResolve(cmd, s, args, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: json, yaml or text (default: the resolved _format)")
	return cmd
}

func runResolve(cmd *cobra.Command, s *params.Schema, args []string, format string) error {
	values := url.Values{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid argument %q: want name=value", arg)
		}
		values.Add(name, value)
	}

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/?"+values.Encode(), http.NoBody)
	if err != nil {
		return err
	}

	p, err := s.FromRequest(r)
	if err != nil {
		var pd *params.ProblemDetail
		if !errors.As(err, &pd) {
			return err
		}
		if encErr := encode(cmd, format, s.Config().DefaultFormat, pd); encErr != nil {
			return encErr
		}
		return errRejected
	}

	opts, err := p.Options(false)
	if err != nil {
		return err
	}
	return encode(cmd, format, p.ResponseFormat(), opts)
}

func encode(cmd *cobra.Command, format, fallback string, v any) error {
	if format == "" {
		format = fallback
	}
	enc, ok := params.EncoderFor(format)
	if !ok {
		return fmt.Errorf("unknown format %q", format)
	}
	return enc.Encode(cmd.OutOrStdout(), v)
}
