package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/plaxtilineas/catalog_api/internal/config"
	"github.com/plaxtilineas/catalog_api/internal/database"
	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/repository"
	"github.com/plaxtilineas/catalog_api/internal/service"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "catalogctl",
		Usage: "Operations for the catalog API database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: runMigrate,
			},
			{
				Name:  "create-admin",
				Usage: "Create the bootstrap admin account unless it already exists",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "overrides ADMIN_USERNAME"},
					&cli.StringFlag{Name: "email", Usage: "overrides ADMIN_EMAIL"},
					&cli.StringFlag{Name: "password", Usage: "overrides ADMIN_PASSWORD"},
					&cli.StringFlag{Name: "role", Usage: "overrides ADMIN_ROLE"},
				},
				Action: runCreateAdmin,
			},
			{
				Name:  "seed",
				Usage: "Insert catalog products from a JSON file, skipping names already present",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Value: "data/seed_products.json", Usage: "seed file path"},
				},
				Action: runSeed,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("catalogctl failed")
	}
}

func connect() (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(ctx context.Context, c *cli.Command) error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.DB, cfg.DB.MigrationsURL); err != nil {
		return err
	}
	log.Info().Msg("Migration complete")
	return nil
}

func runCreateAdmin(ctx context.Context, c *cli.Command) error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	admin := cfg.Admin
	overrideString(c, "username", &admin.Username)
	overrideString(c, "email", &admin.Email)
	overrideString(c, "password", &admin.Password)
	overrideString(c, "role", &admin.Role)
	if !admin.Enabled() {
		return fmt.Errorf("username, email and password are required")
	}

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := service.NewAuthService(repository.NewUserRepository(db), tokens)
	created, err := authSvc.EnsureAdmin(ctx, admin)
	if err != nil {
		return err
	}
	if !created {
		log.Info().Str("email", admin.Email).Msg("Admin already exists, nothing to do")
		return nil
	}
	log.Info().Str("email", admin.Email).Str("role", admin.Role).Msg("Admin created")
	return nil
}

func overrideString(c *cli.Command, name string, dst *string) {
	if c.IsSet(name) {
		*dst = c.String(name)
	}
}

// seedProduct is one entry of the seed file. Images reference already hosted URLs.
type seedProduct struct {
	models.ProductInput
	Images []models.ProductImage `json:"images"`
}

func runSeed(ctx context.Context, c *cli.Command) error {
	raw, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var entries []seedProduct
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	productRepo := repository.NewProductRepository(db)
	productSvc := service.NewProductService(db, productRepo)

	var inserted, skipped int
	for _, entry := range entries {
		exists, err := productRepo.NameExists(ctx, entry.Name)
		if err != nil {
			return err
		}
		if exists {
			skipped++
			log.Debug().Str("name", entry.Name).Msg("Product already present, skipping")
			continue
		}

		images := make([]service.UploadedImage, 0, len(entry.Images))
		for _, img := range entry.Images {
			var name string
			if img.Description != nil {
				name = *img.Description
			}
			images = append(images, service.UploadedImage{URL: img.URL, OriginalName: name})
		}
		result, err := productSvc.Create(ctx, entry.ProductInput, images)
		if err != nil {
			return fmt.Errorf("seed %q: %w", entry.Name, err)
		}
		inserted++
		log.Info().Int("product_id", result.ID).Str("name", result.Name).Msg("Product seeded")
	}

	log.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("Seed complete")
	return nil
}
