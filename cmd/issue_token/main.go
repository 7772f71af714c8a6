package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"task_manager/internal/service"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", service.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	issuer, err := service.NewTokenIssuer(os.Getenv("JWT_SECRET"), *ttl)
	if err != nil {
		log.Fatalf("JWT_SECRET: %v", err)
	}

	token, err := issuer.Generate(*subject)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("subject=%s expires=%s\n", *subject, time.Now().Add(*ttl).UTC().Format(time.RFC3339))
	fmt.Println(token)
}
