package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"parcelhub.backend/internal/config"
	"parcelhub.backend/internal/infrastructure/datasources/postgres"
	"parcelhub.backend/internal/infrastructure/repositories"
	"parcelhub.backend/internal/usecases"
)

type promoter interface {
	PromoteToAdmin(ctx context.Context, email string) error
}

type promoteAdminDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (promoter, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultPromoteAdminDeps() promoteAdminDeps {
	return promoteAdminDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (promoter, io.Closer, error) {
			db, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			accountRepo := repositories.NewAccountRepository(db)
			return usecases.NewAdminUsecase(accountRepo, nil, cfg.Email.DispatchTimeout), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func parseEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("--email is required")
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email %q", email)
	}
	return email, nil
}

func runPromoteAdmin(args []string, deps promoteAdminDeps) error {
	def := defaultPromoteAdminDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("promote-admin", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "email of the account to promote (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email, err := parseEmail(*emailFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	runtime, closer, err := deps.prepare(deps.loadCfg())
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	if err := runtime.PromoteToAdmin(context.Background(), email); err != nil {
		return fmt.Errorf("failed to promote %s: %w", email, err)
	}

	_, _ = fmt.Fprintf(deps.out, "Promoted %s to admin\n", email)
	return nil
}

func main() {
	if err := runPromoteAdmin(os.Args[1:], defaultPromoteAdminDeps()); err != nil {
		log.Fatal(err)
	}
}
