package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"academy-payments/internal/config"
	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	pg "academy-payments/internal/infra/db/postgres"

	"github.com/google/uuid"
)

// seed loads a few sample courses and an admin account so the payment flow
// can be exercised end to end on a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin-email", "admin@example.com", "admin account email")
	adminPassword := flag.String("admin-password", "", "admin account password (required)")
	flag.Parse()

	if *adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	courseRepo := pg.NewCourseRepo(pool)
	userRepo := pg.NewUserRepo(pool)

	// If courses already exist, do nothing.
	courses, err := courseRepo.ListActive(ctx, nil)
	if err != nil {
		log.Fatalf("list courses: %v", err)
	}
	if len(courses) > 0 {
		fmt.Printf("%d courses already present. No changes.\n", len(courses))
		return
	}

	seed := []struct {
		Name  string
		Desc  string
		Price int64
	}{
		{"Diploma in Accounting", "Two-semester accounting program", 30_000},
		{"Web Development Bootcamp", "Full-stack development, 12 weeks", 45_000},
		{"English for Business", "Evening language course", 12_000},
	}
	for _, s := range seed {
		c, err := model.NewCourse(uuid.NewString(), s.Name, s.Desc, s.Price, cfg.Payment.Currency)
		if err != nil {
			log.Fatalf("new course %q: %v", s.Name, err)
		}
		if err := courseRepo.Save(ctx, nil, c); err != nil {
			log.Fatalf("save course %q: %v", s.Name, err)
		}
		fmt.Printf("seeded course %s (%d %s)\n", c.Name, c.Price, c.Currency)
	}

	if _, err := userRepo.FindByEmail(ctx, nil, *adminEmail); err == nil {
		fmt.Println("admin account already present.")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("find admin: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin, err := model.NewUser(uuid.NewString(), *adminEmail, string(hash), "Administrator", "", model.RoleAdmin)
	if err != nil {
		log.Fatalf("new admin: %v", err)
	}
	if err := userRepo.Save(ctx, nil, admin); err != nil {
		log.Fatalf("save admin: %v", err)
	}
	fmt.Printf("seeded admin %s\n", admin.Email)
}
