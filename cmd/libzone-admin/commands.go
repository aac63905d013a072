package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/hash"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(repository.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var fileURL string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s repository.Store) error {
				n, err := seedCatalog(cmd.Context(), s, clock.Real(), fileURL)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "catalog not empty, nothing seeded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fileURL, "file-url", "", "public PDF served for every demo book")
	return cmd
}

func (a *app) createAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. Without --password the password is read from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			return a.withStore(cmd.Context(), func(s repository.Store) error {
				u, err := createAdmin(cmd.Context(), s, name, email, password, clock.Real())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) purgeOTPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-otps",
		Short: "Delete expired signup codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s repository.Store) error {
				n, err := s.PurgeExpiredOTPs(cmd.Context(), clock.Real().Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired codes\n", n)
				return nil
			})
		},
	}
}

// readPassword prompts twice with echo disabled.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return strings.TrimSpace(string(first)), nil
}

func ptr[T any](v T) *T { return &v }

var demoCatalog = []model.CreateBookReq{
	{Title: "The Future of Code", Author: "Elena R.", Category: "Technology", Total: ptr(20), Available: ptr(12), Image: "/book-1.png", Rating: ptr(4.8)},
	{Title: "Design Systems", Author: "Marcus Chen", Category: "Design", Total: ptr(15), Available: ptr(3), Image: "/book-2.png", Rating: ptr(4.9)},
	{Title: "Sustainable Tech", Author: "Sarah Greene", Category: "Science", Total: ptr(10), Available: ptr(8), Image: "/book-3.png", Rating: ptr(4.5)},
	{Title: "Digital Art Mastery", Author: "Alex V.", Category: "Art", Total: ptr(5), Available: ptr(0), Image: "/book-4.png", Rating: ptr(4.7)},
	{Title: "Minimalist UI", Author: "John D.", Category: "Design", Total: ptr(8), Available: ptr(5), Image: "/book-2.png", Rating: ptr(4.6)},
}

// seedCatalog inserts the demo books when the catalog is empty. Demo books
// have no private file; with fileURL set they are readable through it,
// otherwise they can be borrowed but not read.
func seedCatalog(ctx context.Context, r repository.BookRepo, clk clock.Clock, fileURL string) (int, error) {
	n, err := r.CountBooks(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	now := clk.Now()
	for i, req := range demoCatalog {
		b := model.NewBook(req)
		b.ID = uuid.NewString()
		b.FileURL = fileURL
		// Keep the listed order when sorting newest first.
		b.CreatedAt = now.Add(-time.Duration(i) * time.Second)
		b.UpdatedAt = b.CreatedAt
		if err := r.CreateBook(ctx, &b); err != nil {
			return i, fmt.Errorf("seed %q: %w", b.Title, err)
		}
	}
	return len(demoCatalog), nil
}

func createAdmin(ctx context.Context, r repository.UserRepo, name, email, password string, clk clock.Clock) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid --email is required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		CreatedAt:    clk.Now(),
	}
	if err := r.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%s is already registered", email)
		}
		return nil, err
	}
	return u, nil
}
