// Command content-seed writes the initial site content document through the
// configured content backend. An existing document is left alone unless
// --force is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/repository"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/service"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var filePath string
	var force bool

	flagSet := pflag.NewFlagSet("content-seed", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", "data/seed.json", "JSON document to seed")
	flagSet.BoolVar(&force, "force", false, "overwrite an existing document")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	doc, err := content.Decode(raw)
	if err != nil {
		return fmt.Errorf("seed file %s: %w", filePath, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" && cfg.Content.Backend == "redis" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	backend, closeBackend, err := repository.Open(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer closeBackend()

	wrote, err := seed(ctx, service.New(backend), doc, force)
	if err != nil {
		return err
	}
	if wrote {
		logger.Infof("seeded content document from %s into %s backend (%d top-level keys)", filePath, backend.Name(), len(doc))
	} else {
		logger.Infof("content document already present in %s backend; use --force to overwrite", backend.Name())
	}
	return nil
}

type store interface {
	Read(ctx context.Context) (content.Document, error)
	Replace(ctx context.Context, doc content.Document) error
}

// seed writes doc when the store is empty or force is set. It reports
// whether a write happened.
func seed(ctx context.Context, s store, doc content.Document, force bool) (bool, error) {
	if !force {
		_, err := s.Read(ctx)
		switch {
		case err == nil:
			return false, nil
		case !errors.Is(err, content.ErrNotFound):
			return false, fmt.Errorf("checking existing content: %w", err)
		}
	}
	if err := s.Replace(ctx, doc); err != nil {
		return false, fmt.Errorf("writing content: %w", err)
	}
	return true, nil
}
