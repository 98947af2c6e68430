//go:build ignore

// Seed an operator account:
//
//	go run scripts/create_admin.go -email admin@example.com -password secret
package main

import (
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

func main() {
	name := flag.String("name", "Admin", "display name")
	email := flag.String("email", "", "login email (required)")
	password := flag.String("password", "", "login password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg := config.Load()
	database.Connect(cfg)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Name:     *name,
		Email:    *email,
		Password: string(hash),
		Status:   true,
		Mode:     "D",
	}
	if err := database.DB.Where(models.User{Email: *email}).
		Assign(user).
		FirstOrCreate(&user).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("operator account ready: %s (id=%d)", user.Email, user.ID)
}
