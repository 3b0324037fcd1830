package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/model"
	"userhub/internal/repository"
)

const bcryptCost = 10

// seedUser describes one bootstrap account.
type seedUser struct {
	Username string
	Email    string
	Role     string
	Group    string
}

var seedGroups = []string{"engineering", "support"}

var seedUsers = []seedUser{
	{Username: "admin", Email: "admin@example.com", Role: model.RoleAdmin},
	{Username: "eng-moderator", Email: "eng-moderator@example.com", Role: model.RoleModerator, Group: "engineering"},
	{Username: "adam", Email: "adam@example.com", Role: model.RoleUser, Group: "engineering"},
	{Username: "beth", Email: "beth@example.com", Role: model.RoleUser, Group: "support"},
}

func main() {
	log.Println("Starting seed script...")

	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Group{}, &model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	groupRepo := repository.NewGroupRepository(gormDB)

	password := getEnv("SEED_PASSWORD", "password123")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	groupIDs := make(map[string]uint, len(seedGroups))
	for _, name := range seedGroups {
		id, err := ensureGroup(ctx, gormDB, groupRepo, name)
		if err != nil {
			log.Fatalf("Failed to seed group %s: %v", name, err)
		}
		groupIDs[name] = id
	}

	created := 0
	for _, su := range seedUsers {
		if _, err := userRepo.FindByUsername(ctx, su.Username); err == nil {
			log.Printf("User %s already exists, skipping", su.Username)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", su.Username, err)
		}

		user := &model.User{
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: string(hashed),
			Role:         su.Role,
		}
		if su.Group != "" {
			id := groupIDs[su.Group]
			user.GroupID = &id
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Username, err)
		}
		created++
	}

	log.Printf("Seed completed: %d groups, %d new users", len(seedGroups), created)
}

func ensureGroup(ctx context.Context, gormDB *gorm.DB, groups repository.GroupRepository, name string) (uint, error) {
	var existing model.Group
	err := gormDB.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	group := &model.Group{Name: name}
	if err := groups.Create(ctx, group); err != nil {
		return 0, err
	}
	return group.ID, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
