package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-flags/internal/flagdef"
)

// NewFlagsCommand creates the `flagctl flags` command group.
func NewFlagsCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "List and import flag definitions",
	}
	cmd.AddCommand(newFlagsListCommand(o), newFlagsImportCommand(o))
	return cmd
}

func newFlagsListCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List flags ordered by weight",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			list, err := flags.ListFlags(o.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(list) == 0 {
				printWarning(w, "no flags defined")
				return nil
			}
			for _, f := range list {
				scope := "personal"
				if f.Global {
					scope = "global"
				}
				printSuccess(w, "%s", f.ID)
				printInfo(w, "    %s on %s (%s, weight %d), updated %s",
					f.Label, f.EntityType, scope, f.Weight, ago(f.UpdatedAt))
			}
			return nil
		},
	}
}

func newFlagsImportCommand(o *Options) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Apply a YAML flag definitions file",
		Long: `Creates missing flags and updates changed ones in place. Existing
flaggings survive. With --prune, flags absent from the file are deleted
together with their flaggings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := flagdef.Load(args[0])
			if err != nil {
				return err
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			res, err := flags.SyncDefinitions(o.Context(), defs, prune)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "imported %d flag definitions from %s", len(defs), args[0])
			printList(w, "created", res.Created)
			printList(w, "updated", res.Updated)
			printList(w, "removed", res.Removed)
			printInfo(w, "unchanged: %d", res.Unchanged)
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "delete flags missing from the file")
	return cmd
}

func printList(w io.Writer, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	printInfo(w, "%s: %s", label, strings.Join(ids, ", "))
}
