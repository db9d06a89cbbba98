// Package main is the entry point for the Meridian admin CLI.
// This tool provides administrative commands for managing back-office
// users and inspecting authentication history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/config"
	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
	"github.com/prn-tf/meridian-backoffice/internal/repository/postgres"
	"github.com/prn-tf/meridian-backoffice/internal/repository/sqlite"
	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// cliActor is the synthetic administrator the CLI acts as. It never
// exists in the users table, so the self-deletion guard cannot trip.
var cliActor = &domain.User{ID: 0, Account: "cli", Name: "Meridian CLI", IsAdmin: true}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Meridian Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUser(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "authlog":
		if err := runAuthLog(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUser(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user requires a subcommand: create, list, delete")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		account := fs.String("account", "", "login handle")
		username := fs.String("username", "", "display handle")
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "initial password")
		admin := fs.Bool("admin", false, "grant administrator privileges")
		fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, admins *service.UserAdminService) error {
			user, err := admins.CreateUser(ctx, cliActor, service.CreateUserInput{
				Account:  *account,
				Username: *username,
				Name:     *name,
				Email:    *email,
				Password: *password,
				IsAdmin:  *admin,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %d (%s)\n", user.ID, user.Account)
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, admins *service.UserAdminService) error {
			result, err := admins.ListUsers(ctx, cliActor, repository.ListOptions{Limit: 1000})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tACCOUNT\tNAME\tEMAIL\tADMIN\t2FA")
			for _, u := range result.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%t\n",
					u.ID, u.Account, u.Name, u.Email, u.IsAdmin, u.TwoFactorEnabled)
			}
			return tw.Flush()
		})

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		id := fs.Int64("id", 0, "user id to delete")
		fs.Parse(args[1:])

		if *id <= 0 {
			return fmt.Errorf("-id is required")
		}

		return withServices(*configPath, func(ctx context.Context, admins *service.UserAdminService) error {
			if err := admins.DeleteUser(ctx, cliActor, *id); err != nil {
				return err
			}
			fmt.Printf("Deleted user %d\n", *id)
			return nil
		})

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runAuthLog(args []string) error {
	fs := flag.NewFlagSet("authlog", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	limit := fs.Int("limit", 50, "number of entries to show")
	fs.Parse(args)

	return withServices(*configPath, func(ctx context.Context, admins *service.UserAdminService) error {
		entries, err := admins.RecentAuthLogs(ctx, cliActor, *limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tACCOUNT\tACTION\tSUCCESS\tIP")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Account, e.Action, e.Success, e.IPAddress)
		}
		return tw.Flush()
	})
}

// withServices opens the configured database, runs fn against the user
// administration service, and closes everything down afterwards.
func withServices(configPath string, fn func(context.Context, *service.UserAdminService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	ctx := context.Background()

	var repos *repository.Repositories
	var closer interface{ Close() error }

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		repos, closer = postgres.NewRepositories(db), db

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return err
		}
		repos, closer = sqlite.NewRepositories(db), db

	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
	defer closer.Close()

	admins := service.NewUserAdminService(repos.User, repos.AuthLog, logger)
	return fn(ctx, admins)
}

func printUsage() {
	fmt.Println(`Meridian Admin CLI

Usage:
  meridian-admin <command> [arguments]

Commands:
  user        Manage back-office users (create, list, delete)
  authlog     Show recent authentication events
  version     Print version information
  help        Show this help message

Examples:
  meridian-admin user create -account admin -username admin -name "Site Admin" -email admin@example.com -password secret1 -admin
  meridian-admin user list
  meridian-admin user delete -id 3
  meridian-admin authlog -limit 20

All commands accept -config to point at a config file; otherwise the
usual search paths and MERIDIAN_* environment variables apply.`)
}
