package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	mongodb "github.com/biblioteca/loan-system/internal/infrastructure/db/mongo"
)

func newIndexesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the unique and lookup indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database, _ zerolog.Logger) error {
				if err := mongodb.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured on", db.Name())
				return nil
			})
		},
	}
}
