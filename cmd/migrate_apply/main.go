package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"task_manager/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	migs, err := migrations.List(migrations.DialectPostgres)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}

	if !*apply {
		for _, m := range migs {
			fmt.Println(m.Name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	for _, m := range migs {
		if _, err := db.Exec(context.Background(), m.SQL); err != nil {
			log.Fatalf("failed to apply %s: %v", m.Name, err)
		}
		fmt.Printf("applied %s\n", m.Name)
	}
}
