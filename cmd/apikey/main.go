package main

// Operator tool for workspace API keys:
//   go run ./cmd/apikey mint --workspace <id> [--store]
//   go run ./cmd/apikey inspect <key>

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"kingsign-backend/internal/apikeys"
	"kingsign-backend/internal/shared/config"
	"kingsign-backend/internal/shared/storage/db"
	"kingsign-backend/internal/workspaces"
)

var errUsage = errors.New("usage: apikey <mint|inspect> [flags]")

// keyStore persists a minted key on its workspace.
type keyStore interface {
	SetAPIKey(ctx context.Context, id, apiKey string) error
}

type env struct {
	cfg    config.Config
	stdout io.Writer
	// openStore is swapped in tests.
	openStore func(ctx context.Context, cfg config.Config) (keyStore, func(), error)
}

func main() {
	e := env{cfg: config.Load(), stdout: os.Stdout, openStore: openPGStore}
	if err := run(context.Background(), e, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "apikey: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, e env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "mint":
		return mint(ctx, e, args[1:])
	case "inspect":
		return inspect(e, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func addCodecFlags(fs *pflag.FlagSet, cfg config.Config, secret, prefix *string) {
	fs.StringVar(secret, "secret", cfg.EncryptionSecret, "master secret (default ENCRYPTION_SECRET)")
	fs.StringVar(prefix, "prefix", cfg.APIKeyPrefix, "key prefix (default API_KEY_PREFIX)")
}

func mint(ctx context.Context, e env, args []string) error {
	var workspaceID, secret, prefix string
	var store bool
	fs := pflag.NewFlagSet("mint", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&workspaceID, "workspace", "w", "", "workspace id")
	fs.BoolVar(&store, "store", false, "save the key on the workspace in DATABASE_URL, revoking the previous key")
	addCodecFlags(fs, e.cfg, &secret, &prefix)
	if err := fs.Parse(args); err != nil {
		return err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return errors.New("--workspace is required")
	}

	key, err := apikeys.NewIssuer(apikeys.NewCodec(secret), prefix).Mint(workspaceID)
	if err != nil {
		return err
	}
	if store {
		ks, closeFn, err := e.openStore(ctx, e.cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := ks.SetAPIKey(ctx, workspaceID, key); err != nil {
			return fmt.Errorf("store key: %w", err)
		}
	}
	fmt.Fprintln(e.stdout, key)
	return nil
}

func inspect(e env, args []string) error {
	var secret, prefix string
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addCodecFlags(fs, e.cfg, &secret, &prefix)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect takes exactly one key")
	}
	workspaceID, err := apikeys.NewIssuer(apikeys.NewCodec(secret), prefix).Parse(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, workspaceID)
	return nil
}

func openPGStore(ctx context.Context, cfg config.Config) (keyStore, func(), error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil, errors.New("DATABASE_URL is required for --store")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return nil, nil, err
	}
	return &workspaces.PGRepo{DB: sqlDB}, func() { _ = sqlDB.Close() }, nil
}
