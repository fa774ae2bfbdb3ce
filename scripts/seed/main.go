package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/app"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

type demoUser struct {
	Username string
	Password string
	Role     rbac.Role
}

var demoUsers = []demoUser{
	{Username: "manager", Password: "manager123", Role: rbac.RoleManager},
	{Username: "user", Password: "user123", Role: rbac.RoleUser},
	{Username: "auditor", Password: "auditor123", Role: rbac.RoleAuditor},
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	logger := app.NewLogger(cfg, os.Stderr)
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	authService := auth.NewService(stores.Users, auth.ServiceConfig{
		BcryptCost:        cfg.BcryptCost,
		BootstrapPassword: cfg.BootstrapAdminPassword,
	}, logger)

	fmt.Println("→ Seeding users...")
	if err := seedUsers(ctx, authService); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	fmt.Println("→ Seeding records...")
	if err := seedRecords(ctx, records.NewService(stores.Records, nil)); err != nil {
		log.Fatalf("seed records: %v", err)
	}
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedUsers(ctx context.Context, svc *auth.Service) error {
	if _, err := svc.BootstrapDefaultAdmin(ctx); err != nil {
		return err
	}
	for _, u := range demoUsers {
		err := svc.Signup(ctx, u.Username, u.Password, u.Role)
		_, msg := auth.SignupMessage(err)
		fmt.Printf("  %s (%s): %s\n", u.Username, u.Role, msg)
		if err != nil && !errors.Is(err, shared.ErrUserAlreadyExists) {
			return fmt.Errorf("%s: %w", u.Username, err)
		}
	}
	return nil
}

// seedRecords only fills an empty record store so reruns stay idempotent.
func seedRecords(ctx context.Context, svc *records.Service) error {
	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Printf("  %d records present, skipping\n", len(existing))
		return nil
	}
	for _, content := range []string{"Quarterly access review scheduled", "Rotate bootstrap admin password"} {
		if _, err := svc.Add(ctx, content, auth.DefaultAdminUsername); err != nil {
			return err
		}
	}
	return nil
}
