package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/domain"
	jwtsvc "petcare/internal/pkg/jwt"
	"petcare/internal/repository"
)

type demoUser struct {
	email     string
	firstName string
	lastName  string
	role      domain.UserRole
	country   string
}

var demoUsers = []demoUser{
	{email: "ana.client@petcare.test", firstName: "Ana", lastName: "Paz", role: domain.RoleClient, country: "AR"},
	{email: "juan.client@petcare.test", firstName: "Juan", lastName: "Rojas", role: domain.RoleClient, country: "CO"},
	{email: "walker.ar@petcare.test", firstName: "Lucia", lastName: "Gomez", role: domain.RoleProvider, country: "AR"},
	{email: "walker.co@petcare.test", firstName: "Mateo", lastName: "Diaz", role: domain.RoleProvider, country: "CO"},
}

func main() {
	_ = godotenv.Load()
	reset := flag.Bool("reset", false, "delete existing bookings, ledger and journal first")
	flag.Parse()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	if *reset {
		log.Println("Cleaning old data...")
		for _, table := range []string{"webhook_events", "transactions", "bookings"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.Fatalf("cleanup %s failed: %v", table, err)
			}
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	bookings := repository.NewBookingRepository(db)

	byEmail := map[string]*domain.User{}
	for _, du := range demoUsers {
		u := &domain.User{Email: du.email, FirstName: du.firstName, LastName: du.lastName, Role: du.role, Country: du.country}
		if err := users.Upsert(ctx, u); err != nil {
			log.Fatalf("upsert user %s: %v", du.email, err)
		}
		byEmail[du.email] = u
	}

	seeds := []struct {
		client, provider, service, currency string
		total                               decimal.Decimal
	}{
		{"ana.client@petcare.test", "walker.ar@petcare.test", "Dog walking, 1h", "ARS", decimal.NewFromInt(1000)},
		{"ana.client@petcare.test", "walker.ar@petcare.test", "Cat sitting, weekend", "ARS", decimal.RequireFromString("12500.50")},
		{"juan.client@petcare.test", "walker.co@petcare.test", "Dog walking, 1h", "COP", decimal.NewFromInt(45000)},
	}

	jwt := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, s := range seeds {
		client := byEmail[s.client]
		b := &domain.Booking{
			ClientID:    client.ID,
			ProviderID:  byEmail[s.provider].ID,
			ServiceName: s.service,
			TotalPrice:  s.total,
			Currency:    s.currency,
		}
		if err := bookings.Create(ctx, b); err != nil {
			log.Fatalf("create booking: %v", err)
		}
		fmt.Printf("booking %s  %s %s  %s (%s)\n", b.ID, s.total, s.currency, s.service, client.Country)
	}

	for _, du := range demoUsers {
		if du.role != domain.RoleClient {
			continue
		}
		token, err := jwt.GenerateToken(byEmail[du.email].ID.String(), string(du.role))
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Printf("token %s  %s\n", du.email, token)
	}
	log.Println("Seed completed")
}
