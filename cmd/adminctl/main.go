// Command adminctl bootstraps the first administrator account directly
// against the database, for a fresh deployment where no admin exists yet to
// call the role-change endpoint.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/config"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/repomanager"

	"database/sql"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter admin email")
	email, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("reading email: %v", err)
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		log.Fatal("a valid email is required")
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	if len(password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("password hasher init error: %v", err)
	}
	digest, err := hasher.Hash(string(password))
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	u, err := repos.Users(db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: digest,
		Rol:          models.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("creating admin account: %v", err)
	}

	fmt.Printf("Admin account created, id=%d\n", u.ID)
}
