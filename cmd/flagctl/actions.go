package main

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/rules"
)

// NewActionsCommand creates the `flagctl actions` command group.
func NewActionsCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List and run workflow actions",
	}
	cmd.AddCommand(newActionsListCommand(o), newActionsRunCommand(o))
	return cmd
}

func newActionsListCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered workflow actions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := o.Actions()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, a := range manager.Registry().Actions() {
				def := a.Definition()
				printSuccess(w, "%s", def.ID)
				printInfo(w, "    %s [%s] %s", def.Label, def.Category, a.Summary())

				for _, name := range slices.Sorted(maps.Keys(def.Contexts)) {
					c := def.Contexts[name]
					printInfo(w, "      %s (%s): %s", name, c.Type, c.Label)
				}
			}
			return nil
		},
	}
}

func newActionsRunCommand(o *Options) *cobra.Command {
	var (
		actor    domain.Actor
		flagID   string
		entityID string
	)
	cmd := &cobra.Command{
		Use:     "run <action-id>",
		Short:   "Execute a workflow action on one entity",
		Example: `  flagctl actions run flag_action_unflag --flag bookmark --entity 42 --user user-1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor.IsZero() {
				return domainerrors.Validation("--user or --session is required")
			}
			manager, err := o.Actions()
			if err != nil {
				return err
			}
			action, err := manager.CreateInstance(args[0])
			if err != nil {
				return err
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}

			ctx := domain.WithActor(o.Context(), actor)
			flag, entity, err := resolve(ctx, flags, flagID, entityID)
			if err != nil {
				return err
			}
			if err := action.Execute(ctx, rules.Context{Entity: entity, Flag: flag}); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s: %s %d with %s", action.Summary(), entity.Type, entity.ID, flag.ID)
			return nil
		},
	}
	actorFlags(cmd, &actor)
	cmd.Flags().StringVar(&flagID, "flag", "", "flag machine name")
	cmd.Flags().StringVar(&entityID, "entity", "", "entity id")
	_ = cmd.MarkFlagRequired("flag")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}
