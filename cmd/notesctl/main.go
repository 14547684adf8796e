// notesctl is the operator CLI for a secure-notes deployment. It reads the
// same environment as the server.
//
//	notesctl migrate [up|down|status]
//	notesctl seed [--email E] [--name N] [--password-file F]
//	notesctl create-user <email> --name N [--password-file F]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/miapp/secure-notes/internal/core/service"
	"github.com/miapp/secure-notes/internal/infrastructure/config"
	"github.com/miapp/secure-notes/internal/infrastructure/db/sqlite"
	"github.com/miapp/secure-notes/internal/infrastructure/security"
	"github.com/miapp/secure-notes/internal/infrastructure/storage"
	"github.com/miapp/secure-notes/pkg/logger"
)

const usage = `usage: notesctl <command> [flags]

commands:
  migrate [up|down|status]   apply, revert or report the SQLite schema
  seed                       create the first account and sample notes on an empty store
  create-user <email>        register an account
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "notesctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, cfg, args[1:], out)
	case "seed":
		return runSeed(ctx, cfg, args[1:], out)
	case "create-user":
		return runCreateUser(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	action := "up"
	if flagSet.NArg() > 0 {
		action = flagSet.Arg(0)
	}

	if cfg.StorageDriver != storage.DriverSQLite {
		// Mongo has no schema beyond its indexes, which Open ensures.
		if action != "up" {
			return fmt.Errorf("migrate %s: not supported for driver %q", action, cfg.StorageDriver)
		}
		store, err := storage.Open(ctx, cfg, cliLogger(cfg))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s indexes ensured\n", cfg.StorageDriver)
		return store.Close(ctx)
	}

	db, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.SQLite.BusyTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	switch action {
	case "up":
		err = sqlite.Migrate(ctx, db)
	case "down":
		err = sqlite.Rollback(ctx, db)
	case "status":
	default:
		return fmt.Errorf("%w: unknown migrate action %q", errUsage, action)
	}
	if err != nil {
		return err
	}

	version, err := sqlite.Version(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	account := service.SeedAccount{
		Email:    cfg.Seed.Email,
		Name:     cfg.Seed.Name,
		Password: cfg.Seed.Password,
	}
	var passwordFile string

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&account.Email, "email", account.Email, "email of the seeded account")
	flagSet.StringVar(&account.Name, "name", account.Name, "display name of the seeded account")
	flagSet.StringVar(&passwordFile, "password-file", "", "file holding the password, or - to prompt (default: SEED_PASSWORD, else prompt)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if passwordFile != "" || account.Password == "" {
		password, err := readPassword(passwordFile)
		if err != nil {
			return err
		}
		account.Password = password
	}

	store, err := storage.Open(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	seeded, err := service.NewSeeder(store.Users, store.Notes, hasher, cliLogger(cfg)).Seed(ctx, account)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(out, "store already has accounts; nothing seeded")
		return nil
	}
	fmt.Fprintf(out, "seeded %s\n", account.Email)
	return nil
}

func runCreateUser(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var name, passwordFile string

	flagSet := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	flagSet.StringVar(&name, "name", "", "display name (required)")
	flagSet.StringVar(&passwordFile, "password-file", "", "file holding the password, or - to prompt (default: prompt)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("%w: create-user takes exactly one email", errUsage)
	}
	if name == "" {
		return fmt.Errorf("%w: --name is required", errUsage)
	}

	password, err := readPassword(passwordFile)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	tokens, err := security.NewJWTService(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		return err
	}
	auth, err := service.NewAuthService(store.Users, security.NewBcryptHasher(cfg.BcryptCost), tokens, cliLogger(cfg))
	if err != nil {
		return err
	}

	user, err := auth.Register(ctx, flagSet.Arg(0), password, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %d <%s>\n", user.ID, user.Email)
	return nil
}

// cliLogger writes warnings and above to stderr so that stdout stays
// machine-readable.
func cliLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if strings.EqualFold(level, "info") {
		level = "warn"
	}
	return logger.New(logger.Options{Level: level, Pretty: true, Output: os.Stderr})
}
