package commands

import (
	"github.com/conduit-lang/restmap/internal/cli/ui"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/spf13/cobra"
)

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var (
		pairs []string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "resolve <resource>",
		Short: "Resolve a URL for a resource from variables",
		Long: `Match the given variables against the resource's URL templates in
declaration order and print the first URL that can be built. Variables the
template does not use are reported as extra parameters.`,
		Example: `  restmap resolve Note --var resource_id=42
  restmap resolve Note --role collection --var author_id=7`,
		Args: cobra.ExactArgs(1),
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

			// an explicit --var resource_name wins, as it does for the engine
			if _, ok := vars["resource_name"]; !ok {
				vars["resource_name"] = meta.ResourceName()
			}

			var (
				result lookup.Result
				ok     bool
			)
			if role == "" {
				result, ok = meta.Resolver().Resolve(vars)
			} else {
				r, err := lookup.ParseRole(role)
				if err != nil {
					return err
				}
				result, ok = meta.Resolver().ResolveRole(r, vars)
			}
			if !ok {
				roleName := role
				if roleName == "" {
					roleName = "any"
				}
				return &noURLError{resource: meta.Name(), role: roleName, vars: varNames(vars)}
			}

			ui.KeyValues(cmd.OutOrStdout(), opts.noColor, [][2]string{
				{"url", result.URL},
				{"full_url", meta.Engine().FullURL(result.URL)},
				{"template", result.Template.Pattern()},
				{"extra", formatVars(result.Extra)},
			})
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "var", nil, "lookup variable as key=value (repeatable)")
	cmd.Flags().StringVar(&role, "role", "", "only consider templates for: lookup, update, create, collection")
	return cmd
}
