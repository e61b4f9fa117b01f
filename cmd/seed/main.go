// seed inserts a verified test user with a few medications into the local
// dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mediremind/api/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "password1234"
)

type medSpec struct {
	name   string
	dosage string
	form   string
	times  []string
	color  string
	icon   string
}

var meds = []medSpec{
	{"Lisinopril", "10mg", "tablet", []string{"08:00"}, "blue", "pill"},
	{"Metformin", "500mg", "tablet", []string{"08:00", "20:00"}, "green", "pill"},
	{"Vitamin D", "1000 IU", "capsule", []string{"12:00"}, "yellow", "capsule"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 12)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert a verified test user so login works without an email round trip
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (id, full_name, email, password_hash, verified, plan)
		VALUES ($1, 'Seed User', $2, $3, TRUE, 'free')
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		uuid.NewString(), seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	start := time.Now().AddDate(0, 0, -7)

	var inserted int
	for _, spec := range meds {
		tag, err := pool.Exec(ctx, `
			INSERT INTO medications (
				id, user_id, name, dosage, form, times, color, icon,
				start_date, reminders, refill_reminder, refill_days_left, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, FALSE, 0, '')
			ON CONFLICT DO NOTHING`,
			uuid.NewString(), userID, spec.name, spec.dosage, spec.form,
			spec.times, spec.color, spec.icon, start,
		)
		if err != nil {
			log.Fatalf("insert medication %s: %v", spec.name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:        %s\n", seedEmail)
	fmt.Printf("  Password:    %s\n", seedPassword)
	fmt.Printf("  User ID:     %s\n", userID)
	fmt.Printf("  Medications: %d inserted\n", inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — login (the code is printed in the server log in local dev):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2 — exchange the code for a token:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login/verify \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"code\":\"CODE\"}'\n", seedEmail)
	fmt.Println()
	fmt.Println("  Step 3 — fetch today's schedule:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/medications/today -H \"Authorization: Bearer $JWT\"")
}
