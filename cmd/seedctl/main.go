package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"shopfloor/internal/auth"
	"shopfloor/internal/catalog"
	"shopfloor/internal/db"
	"shopfloor/internal/session"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Overload(".env")
	}

	app := &cli.App{
		Name:  "seedctl",
		Usage: "create and seed the shopfloor database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
				Usage:    "Postgres connection string",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "apply the database schema",
				Action: runSchema,
			},
			{
				Name:  "seed",
				Usage: "apply the schema, load demo catalog data, and create operator accounts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "admin-email",
						Value: "admin@shopfloor.local",
						Usage: "email for the seeded admin account",
					},
					&cli.StringFlag{
						Name:     "admin-password",
						Required: true,
						Usage:    "password for the seeded admin account",
					},
				},
				Action: runSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connect(c *cli.Context) (*db.Pool, error) {
	pool, err := db.NewPool(c.Context, c.String("database-url"))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

func runSchema(c *cli.Context) error {
	pool, err := connect(c)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.CreateSchema(c.Context); err != nil {
		return err
	}
	log.Printf("schema applied")
	return nil
}

func runSeed(c *cli.Context) error {
	pool, err := connect(c)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := c.Context
	if err := pool.CreateSchema(ctx); err != nil {
		return err
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return err
	}
	if err := seedAccounts(ctx, pool, c.String("admin-email"), c.String("admin-password")); err != nil {
		return err
	}

	log.Printf("seed complete")
	return nil
}

func seedCatalog(ctx context.Context, pool *db.Pool) error {
	fixtures := catalog.NewFixtureRepository()

	products, _ := fixtures.Products(ctx)
	for _, product := range products {
		if err := pool.InsertProduct(ctx, product); err != nil {
			return err
		}
	}

	centers, _ := fixtures.WorkCenters(ctx)
	for _, wc := range centers {
		if err := pool.InsertWorkCenter(ctx, wc); err != nil {
			return err
		}
	}

	orders, _ := fixtures.Orders(ctx)
	for _, order := range orders {
		if err := pool.InsertOrder(ctx, order); err != nil {
			return err
		}
	}

	boms, _ := fixtures.BOMs(ctx)
	for _, bom := range boms {
		if err := pool.InsertBOM(ctx, bom); err != nil {
			return err
		}
	}

	moves, _ := fixtures.StockMoves(ctx)
	for _, move := range moves {
		if err := pool.InsertStockMove(ctx, move); err != nil {
			return err
		}
	}
	return nil
}

func seedAccounts(ctx context.Context, pool *db.Pool, adminEmail, adminPassword string) error {
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := session.User{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(adminEmail)),
		Email:     adminEmail,
		FirstName: "Site",
		LastName:  "Admin",
		Role:      session.RoleAdmin,
	}
	if err := pool.UpsertAccount(ctx, admin, hash); err != nil {
		return err
	}
	log.Printf("seeded admin account %s", adminEmail)
	return nil
}
