package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	mongodb "github.com/biblioteca/loan-system/internal/infrastructure/db/mongo"
	"github.com/biblioteca/loan-system/internal/pkg/config"
	"github.com/biblioteca/loan-system/pkg/logger"
)

type rootOptions struct {
	mongoURI string
	database string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "libctl",
		Short:        "Administer the library loan system",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(logger.Options{Level: "warn", Pretty: true, Output: cmd.ErrOrStderr(), Service: "libctl"})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (default $MONGO_URI)")
	cmd.PersistentFlags().StringVar(&opts.database, "db", "", "database name (default $MONGO_DB)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	cmd.AddCommand(newUserCmd(opts), newIndexesCmd(opts))
	return cmd
}

// withDatabase connects, runs fn and disconnects.
func (o *rootOptions) withDatabase(parent context.Context, fn func(ctx context.Context, db *mongo.Database, log zerolog.Logger) error) error {
	ctx, cancel := context.WithTimeout(parent, o.timeout)
	defer cancel()

	cfg, err := config.LoadMongo(ctx)
	if err != nil {
		return err
	}
	if o.mongoURI != "" {
		cfg.URI = o.mongoURI
	}
	if o.database != "" {
		cfg.Database = o.database
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "disconnect: %v\n", err)
		}
	}()

	return fn(ctx, db, logger.Component("libctl"))
}
