package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/flashmind/flashmind-backend/internal/config"
	"github.com/flashmind/flashmind-backend/internal/database"
	"github.com/flashmind/flashmind-backend/internal/logger"
	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

// Creates a professor account that is already enabled and verified, so
// a deployment can be bootstrapped without going through the signup
// email flow.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	professorRepo := repository.NewProfessorRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Professor Account ===")

	firstName := prompt(reader, "Enter First Name: ")
	if firstName == "" {
		fmt.Println("Error: First name is required")
		return
	}

	lastName := prompt(reader, "Enter Last Name: ")
	if lastName == "" {
		fmt.Println("Error: Last name is required")
		return
	}

	username := prompt(reader, "Enter Username: ")
	if username == "" {
		fmt.Println("Error: Username is required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	password := string(bytePassword)
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{
		Email:         email,
		Username:      username,
		PasswordHash:  string(hashedPassword),
		Role:          model.RoleProfessor,
		Enabled:       true,
		EmailVerified: true,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	professor := &model.Professor{
		UserID:    user.ID,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := professorRepo.Create(ctx, professor); err != nil {
		log.Fatal().Err(err).Msg("Failed to create professor profile")
	}

	fmt.Printf("\nSuccess! Professor '%s %s' (%s) created with user ID: %d\n", firstName, lastName, email, user.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
