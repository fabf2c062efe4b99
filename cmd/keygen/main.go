package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.MasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Only registered keys are accepted by the API
	userID := os.Args[1]
	apiKey := auth.New(cfg.Auth).GenerateHMACKey(userID)
	if _, err := auth.RegisterAPIKey(db, apiKey, userID, 0); err != nil {
		fmt.Printf("Error: could not register key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
}
