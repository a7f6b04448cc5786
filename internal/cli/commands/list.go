package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/restmap/internal/cli/ui"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/conduit-lang/restmap/internal/resource"
	"github.com/spf13/cobra"
)

var allRoles = []lookup.Role{lookup.RoleLookup, lookup.RoleUpdate, lookup.RoleCreate, lookup.RoleCollection}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [resource]",
		Short: "List defined resources, or one resource's templates and fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(contextOf(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				table := ui.NewTable(cmd.OutOrStdout(), opts.noColor, "NAME", "RESOURCE NAME", "ROOT URL", "FIELDS")
				for _, name := range s.registry.List() {
					meta, _ := s.registry.Get(name)
					table.AddRow(meta.Name(), meta.ResourceName(), meta.RootURL(), strconv.Itoa(len(meta.Fields())))
				}
				table.Render()
				return nil
			}

			meta, err := s.resource(args[0])
			if err != nil {
				return err
			}
			describe(cmd, meta, opts.noColor)
			return nil
		},
	}
}

func describe(cmd *cobra.Command, meta *resource.Metadata, noColor bool) {
	out := cmd.OutOrStdout()

	templates := ui.NewTable(out, noColor, "PATTERN", "ROLES", "REQUIRES")
	for _, t := range meta.Templates() {
		var roles []string
		for _, r := range allRoles {
			if t.Supports(r) {
				roles = append(roles, r.String())
			}
		}
		templates.AddRow(t.Pattern(), strings.Join(roles, ","), strings.Join(t.RequiredNames(), ","))
	}
	templates.Render()
	fmt.Fprintln(out)

	fields := ui.NewTable(out, noColor, "FIELD", "WIRE NAME", "KIND", "FLAGS")
	for _, f := range meta.Fields() {
		var flags []string
		if f.IsResourceID() {
			flags = append(flags, "resource_id")
		}
		if f.ReadOnly() {
			flags = append(flags, "read_only")
		}
		fields.AddRow(f.Name(), f.WireName(), f.Kind().String(), strings.Join(flags, ","))
	}
	fields.Render()
}
