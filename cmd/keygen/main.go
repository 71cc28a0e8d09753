package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/PartyProtect/revive-your-hair-website/pkg/generator"
)

func main() {
	length := flag.Int("length", 48, "Length of each generated secret")
	flag.Parse()

	if *length < generator.MinSecretLength {
		log.Fatalf("length must be at least %d", generator.MinSecretLength)
	}

	apiKey, err := generator.GenerateToken(*length)
	if err != nil {
		log.Fatal(err)
	}
	salt, err := generator.GenerateToken(*length)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("ANALYTICS_API_KEY=%s\n", apiKey)
	fmt.Printf("IP_HASH_SALT=%s\n", salt)
}
