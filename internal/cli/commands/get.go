package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/conduit-lang/restmap/internal/resource"
	"github.com/spf13/cobra"
)

// fetcher is implemented by engines that can read resources, such as engine.HTTPEngine
type fetcher interface {
	Get(ctx context.Context, vars lookup.Vars) (*resource.Instance, error)
	Filter(ctx context.Context, vars lookup.Vars) ([]*resource.Instance, error)
}

func engineFor(meta *resource.Metadata) (fetcher, error) {
	f, ok := meta.Engine().(fetcher)
	if !ok {
		return nil, fmt.Errorf("resource %s: engine %T cannot fetch", meta.Name(), meta.Engine())
	}
	return f, nil
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:     "get <resource>",
		Short:   "Fetch a single resource and print it as JSON",
		Example: `  restmap get Note --var resource_id=42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(pairs)
			if err != nil {
				return err
			}

			s, err := opts.open(contextOf(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			meta, err := s.resource(args[0])
			if err != nil {
				return err
			}
			eng, err := engineFor(meta)
			if err != nil {
				return err
			}

			inst, err := eng.Get(contextOf(cmd), vars)
			if err != nil {
				return err
			}
			return printJSON(cmd, inst.ToMap(true))
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "var", nil, "lookup variable as key=value (repeatable)")
	return cmd
}

func newFilterCommand(opts *rootOptions) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "filter <resource>",
		Short: "Fetch a resource collection and print it as JSON",
		Long: `Fetch the resource's collection URL. Variables not used by the
collection template are sent as query parameters.`,
		Example: `  restmap filter Note --var title=draft`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(pairs)
			if err != nil {
				return err
			}

			s, err := opts.open(contextOf(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			meta, err := s.resource(args[0])
			if err != nil {
				return err
			}
			eng, err := engineFor(meta)
			if err != nil {
				return err
			}

			items, err := eng.Filter(contextOf(cmd), vars)
			if err != nil {
				return err
			}

			out := make([]map[string]interface{}, 0, len(items))
			for _, inst := range items {
				out = append(out, inst.ToMap(true))
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "var", nil, "variable as key=value (repeatable)")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
