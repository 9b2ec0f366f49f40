package main

import (
	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

// NewFlagCommand creates `flagctl flag`.
func NewFlagCommand(o *Options) *cobra.Command {
	var actor domain.Actor
	cmd := &cobra.Command{
		Use:     "flag <flag-id> <entity-id>",
		Short:   "Flag an entity on behalf of a user or session",
		Example: `  flagctl flag bookmark 42 --user user-1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor.IsZero() {
				return domainerrors.Validation("--user or --session is required")
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			ctx := domain.WithActor(o.Context(), actor)
			flag, entity, err := resolve(ctx, flags, args[0], args[1])
			if err != nil {
				return err
			}
			flagging, err := flags.Flag(ctx, flag, entity)
			if err != nil {
				return err
			}
			count, err := flags.CountFlaggings(ctx, flag, entity)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "flagged %s %d with %s (%s)", entity.Type, entity.ID, flag.ID, flagging.ID)
			printInfo(cmd.OutOrStdout(), "flagged by %d", count)
			return nil
		},
	}
	actorFlags(cmd, &actor)
	return cmd
}

// NewUnflagCommand creates `flagctl unflag`.
func NewUnflagCommand(o *Options) *cobra.Command {
	var actor domain.Actor
	cmd := &cobra.Command{
		Use:     "unflag <flag-id> <entity-id>",
		Short:   "Remove a flagging on behalf of a user or session",
		Example: `  flagctl unflag bookmark 42 --user user-1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor.IsZero() {
				return domainerrors.Validation("--user or --session is required")
			}
			flags, err := o.FlagService()
			if err != nil {
				return err
			}
			ctx := domain.WithActor(o.Context(), actor)
			flag, entity, err := resolve(ctx, flags, args[0], args[1])
			if err != nil {
				return err
			}
			flagging, err := flags.GetFlagging(ctx, flag, entity)
			if err != nil {
				return err
			}
			if err := flags.Unflag(ctx, flag, entity); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "unflagged %s %d with %s, flagged %s", entity.Type, entity.ID, flag.ID, ago(flagging.CreatedAt))
			return nil
		},
	}
	actorFlags(cmd, &actor)
	return cmd
}
