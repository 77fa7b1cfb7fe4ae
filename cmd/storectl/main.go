package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"atelier/internal/db"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	dsn := &cli.StringFlag{
		Name:    "dsn",
		Usage:   "postgres connection string",
		Sources: cli.EnvVars("DB_ADDR"),
	}

	cmd := &cli.Command{
		Name:  "storectl",
		Usage: "database maintenance for the storefront",
		Flags: []cli.Flag{dsn},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withSQL(ctx, c.String("dsn"), func(sqlDB *sql.DB) error {
								if err := db.MigrateUp(ctx, sqlDB); err != nil {
									return err
								}
								logger.Info("migrations applied")
								return nil
							})
						},
					},
					{
						Name:  "down",
						Usage: "Roll back the latest migration",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withSQL(ctx, c.String("dsn"), func(sqlDB *sql.DB) error {
								if err := db.MigrateDown(ctx, sqlDB); err != nil {
									return err
								}
								logger.Info("rolled back one migration")
								return nil
							})
						},
					},
					{
						Name:  "status",
						Usage: "Show applied and pending migrations",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withSQL(ctx, c.String("dsn"), func(sqlDB *sql.DB) error {
								return db.MigrateStatus(ctx, sqlDB)
							})
						},
					},
				},
			},
			{
				Name:  "seed",
				Usage: "Insert the starter category tree (existing slugs are left alone)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "print the tree without writing"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					tree := db.StarterTree()
					if c.Bool("dry-run") {
						printTree(tree, 0)
						return nil
					}

					if c.String("dsn") == "" {
						return errNoDSN
					}
					pool, err := db.New(c.String("dsn"), 2, "1m")
					if err != nil {
						return fmt.Errorf("connect: %w", err)
					}
					defer pool.Close()

					n, err := db.Seed(ctx, pool, tree)
					if err != nil {
						return err
					}
					logger.Infow("seeded categories", "created", n)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}

var errNoDSN = errors.New("DB_ADDR or --dsn is required")

func withSQL(ctx context.Context, dsn string, fn func(*sql.DB) error) error {
	if dsn == "" {
		return errNoDSN
	}
	sqlDB, err := db.OpenSQL(ctx, dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return fn(sqlDB)
}

func printTree(nodes []db.SeedCategory, depth int) {
	for _, n := range nodes {
		fmt.Printf("%*s%s (%s)\n", depth*2, "", n.Name, n.Slug)
		printTree(n.Children, depth+1)
	}
}
