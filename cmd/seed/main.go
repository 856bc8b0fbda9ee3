package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/corvusHold/courier/internal/config"
	cdomain "github.com/corvusHold/courier/internal/contacts/domain"
	crepo "github.com/corvusHold/courier/internal/contacts/repository"
	csvc "github.com/corvusHold/courier/internal/contacts/service"
	"github.com/corvusHold/courier/internal/logger"
	"github.com/corvusHold/courier/internal/platform/storage"
)

var demoContacts = [][2]string{
	{"John Doe", "john.doe@example.com"},
	{"Ana Silva", "ana.silva@example.com"},
	{"Wei Chen", "wei.chen@example.com"},
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	doc, closeFn, err := openContacts(ctx, cfg)
	if err != nil {
		fatalf("open contact store: %v", err)
	}
	defer closeFn()
	dir := csvc.New(crepo.New(doc, logger.New(cfg.AppEnv, cfg.LogLevel)), cfg.MaxContactsPerOwner)

	sub := os.Args[1]
	switch sub {
	case "contacts":
		fs := flag.NewFlagSet("contacts", flag.ExitOnError)
		owner := fs.Int64("owner", 0, "owner id")
		file := fs.String("file", "", "CSV file with name,email rows ('-' for stdin)")
		_ = fs.Parse(os.Args[2:])
		if *owner <= 0 || *file == "" {
			usage()
			os.Exit(2)
		}
		var in io.Reader = os.Stdin
		if *file != "-" {
			f, err := os.Open(*file)
			if err != nil {
				fatalf("open %s: %v", *file, err)
			}
			defer f.Close()
			in = f
		}
		rows, err := readCSV(in)
		if err != nil {
			fatalf("read %s: %v", *file, err)
		}
		added, skipped := importContacts(ctx, dir, *owner, rows)
		fmt.Printf("added=%d skipped=%d\n", added, skipped)
	case "demo":
		fs := flag.NewFlagSet("demo", flag.ExitOnError)
		owner := fs.Int64("owner", 1, "owner id")
		_ = fs.Parse(os.Args[2:])
		added, skipped := importContacts(ctx, dir, *owner, demoContacts)
		fmt.Printf("added=%d skipped=%d\n", added, skipped)
	default:
		usage()
		os.Exit(2)
	}
}

func openContacts(ctx context.Context, cfg config.Config) (storage.Document, func(), error) {
	if cfg.StorageBackend != "postgres" {
		return storage.NewFile(cfg.ContactsFile), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPostgres(pool, "contacts"), pool.Close, nil
}

// readCSV parses name,email rows. A first row of "name,email" is treated as a header.
func readCSV(r io.Reader) ([][2]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	var rows [][2]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 && strings.EqualFold(rec[0], "name") && strings.EqualFold(rec[1], "email") {
			continue
		}
		rows = append(rows, [2]string{rec[0], rec[1]})
	}
	return rows, nil
}

// importContacts adds each row, reporting rows rejected by the directory
// (duplicates, invalid emails, limit) on stderr. A persistence error stops the import.
func importContacts(ctx context.Context, dir cdomain.Service, owner int64, rows [][2]string) (added, skipped int) {
	for _, row := range rows {
		id, err := dir.Add(ctx, owner, row[0], row[1])
		switch {
		case err == nil:
			added++
			stderr("added %d %s <%s>", id, row[0], row[1])
		case errors.Is(err, cdomain.ErrPersistence):
			fatalf("add %s: %v", row[1], err)
		default:
			skipped++
			stderr("skip %s: %v", row[1], err)
		}
	}
	return added, skipped
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  seed contacts --owner <id> --file <contacts.csv|->
  seed demo [--owner 1]

The contact store is chosen with STORAGE_BACKEND (file|postgres), CONTACTS_FILE and DATABASE_URL.
`)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func stderr(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
}
