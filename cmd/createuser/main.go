// Command createuser adds an account directly to the database. Missing
// details are prompted for; the password is always read without echo.
//
// Usage:
//
//	createuser [-username name] [-email addr] [-fullname name] [-avatar url] [-cover url]
//
// Settings come from the same sources as the server (-d, DATABASE_DSN,
// the JSON config file) and are validated the same way, so the signing
// secrets must be set as well.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/flagx"
	"github.com/dmitrijs2005/vidtube/internal/prompt"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

var ownFlags = []string{"-username", "-email", "-fullname", "-avatar", "-cover"}

// readPassword is a seam for tests.
var readPassword = prompt.Password

type userCreator interface {
	Create(ctx context.Context, u users.NewUser) (*models.User, error)
}

func main() {
	if err := start(); err != nil {
		log.Fatalf("createuser: %v", err)
	}
}

func start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, rm.Users(db))
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, repo userCreator) error {
	var nu users.NewUser

	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&nu.Username, "username", "", "username")
	fs.StringVar(&nu.Email, "email", "", "email address")
	fs.StringVar(&nu.FullName, "fullname", "", "full name")
	fs.StringVar(&nu.Avatar, "avatar", "", "avatar image URL")
	fs.StringVar(&nu.CoverImage, "cover", "", "cover image URL (optional)")
	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Username", &nu.Username},
		{"Email", &nu.Email},
		{"Full name", &nu.FullName},
		{"Avatar URL", &nu.Avatar},
	} {
		if *field.dst != "" {
			continue
		}
		v, err := prompt.RequiredText(reader, field.label, out)
		if err != nil {
			return fmt.Errorf("read %s: %w", field.label, err)
		}
		*field.dst = v
	}

	pw, err := readPassword("Password", out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer prompt.Wipe(pw)
	confirm, err := readPassword("Repeat password", out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer prompt.Wipe(confirm)

	if len(bytes.TrimSpace(pw)) == 0 {
		return errors.New("password must not be empty")
	}
	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}
	nu.Password = string(pw)

	u, err := repo.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return errors.New("user with email or username already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "created user %s (%s)\n", u.Username, u.ID)
	return nil
}
