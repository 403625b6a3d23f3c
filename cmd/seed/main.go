package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/comedor-pos/api/internal/config"
	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type starterItem struct {
	name     string
	category database.MenuCategory
	meal     database.Meal
	price    string
}

var starterMenu = []starterItem{
	{"Calentado paisa", database.MenuCategoryDISH, database.MealBREAKFAST, "14000"},
	{"Changua", database.MenuCategoryDISH, database.MealBREAKFAST, "9000"},
	{"Corrientazo del día", database.MenuCategoryDISH, database.MealLUNCH, "16000"},
	{"Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "26000"},
	{"Tinto", database.MenuCategoryDRINK, database.MealALLDAY, "2000"},
	{"Jugo natural", database.MenuCategoryDRINK, database.MealALLDAY, "5000"},
	{"Huevo adicional", database.MenuCategoryADDITION, database.MealALLDAY, "2000"},
	{"Porción de aguacate", database.MenuCategoryADDITION, database.MealALLDAY, "3000"},
}

func main() {
	// CLI flags
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	withMenu := flag.Bool("menu", true, "Seed the starter menu when the catalog is empty")
	flag.Parse()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	// Fall back to defaults
	if *email == "" {
		*email = "admin@comedor.co"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *name == "" {
		*name = "Administrador"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Admin and menu are committed together or not at all
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)

	userID, err := seedAdmin(ctx, q, *email, *password, *name)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	created := 0
	if *withMenu {
		if created, err = seedMenu(ctx, q); err != nil {
			log.Fatalf("Failed to seed menu: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Admin ID: %s", userID)
	log.Printf("Menu items created: %d", created)
}

// seedAdmin creates the ADMIN user if the email is not taken yet.
func seedAdmin(ctx context.Context, q *database.Queries, email, password, fullName string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := q.GetUserByEmail(ctx, email)
	if err == nil {
		log.Printf("User '%s' already exists (ID: %s), skipping", email, existing.ID)
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := q.CreateUser(ctx, database.CreateUserParams{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		Role:           enum.UserRoleAdmin,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	log.Printf("Created admin user '%s' (ID: %s)", email, user.ID)
	return user.ID, nil
}

// seedMenu inserts the starter menu only into an empty catalog.
func seedMenu(ctx context.Context, q *database.Queries) (int, error) {
	items, err := q.ListMenuItems(ctx, database.ListMenuItemsParams{})
	if err != nil {
		return 0, fmt.Errorf("list menu: %w", err)
	}
	if len(items) > 0 {
		log.Printf("Menu already has %d items, skipping", len(items))
		return 0, nil
	}

	for i, it := range starterMenu {
		price := decimal.RequireFromString(it.price)
		var n pgtype.Numeric
		if err := n.Scan(price.StringFixed(2)); err != nil {
			return 0, fmt.Errorf("price for %s: %w", it.name, err)
		}

		if _, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Name:        it.name,
			Category:    it.category,
			Meal:        it.meal,
			Price:       n,
			IsAvailable: true,
			SortOrder:   int32(i + 1),
		}); err != nil {
			return 0, fmt.Errorf("insert %s: %w", it.name, err)
		}
	}
	return len(starterMenu), nil
}
