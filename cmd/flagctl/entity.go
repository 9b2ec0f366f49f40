package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-flags/internal/service"
)

// NewEntityCommand creates the `flagctl entity` command group.
func NewEntityCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Register and list flaggable entities",
	}
	cmd.AddCommand(newEntityAddCommand(o), newEntityListCommand(o))
	return cmd
}

func newEntityAddCommand(o *Options) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:     "add <type> <id>",
		Short:   "Register an entity so it can be flagged",
		Example: `  flagctl entity add node 42 --label "Hello world"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[1])
			if err != nil {
				return err
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			e, err := flags.RegisterEntity(o.Context(), service.RegisterEntityRequest{
				Type:  args[0],
				ID:    id,
				Label: label,
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "registered %s %d", e.Type, e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "human readable label")
	return cmd
}

func newEntityListCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list [type]",
		Aliases: []string{"ls"},
		Short:   "List registered entities, optionally of one type",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entityType string
			if len(args) == 1 {
				entityType = args[0]
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			list, err := flags.ListEntities(o.Context(), entityType)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(list) == 0 {
				printWarning(w, "no entities registered")
				return nil
			}
			for _, e := range list {
				label := e.Label
				if label == "" {
					label = "(no label)"
				}
				printInfo(w, "%s %s  %s", e.Type, strconv.FormatInt(e.ID, 10), label)
			}
			return nil
		},
	}
}
