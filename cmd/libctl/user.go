package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/term"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
	"github.com/biblioteca/loan-system/internal/core/service"
	mongodb "github.com/biblioteca/loan-system/internal/infrastructure/db/mongo"
	"github.com/biblioteca/loan-system/internal/infrastructure/security"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage librarian and student accounts",
	}
	cmd.AddCommand(newUserAddCmd(opts), newUserListCmd(opts))
	return cmd
}

func newUserAddCmd(opts *rootOptions) *cobra.Command {
	var in ports.RegisterUserInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account; the password is read from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			in.Password = pwd

			return opts.withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
				users := service.NewUserService(mongodb.NewUserRepository(db), security.NewBcryptHasher(0), log)
				u, err := users.Register(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (%s)\n", u.Role, u.Username, u.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&in.Role, "role", domain.RoleStudent, "admin or student")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserListCmd(opts *rootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
				users := service.NewUserService(mongodb.NewUserRepository(db), security.NewBcryptHasher(0), log)
				list, err := users.ListByRole(ctx, role)
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", domain.RoleStudent, "admin or student")
	return cmd
}

func printUsers(w io.Writer, users []*domain.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Email)
	}
	return tw.Flush()
}

// readPassword masks input on a terminal and falls back to one line of
// stdin otherwise, so the command can be scripted.
func readPassword(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
