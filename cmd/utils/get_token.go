package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"silentskies-service/internal/infrastructure/oauth"
	"silentskies-service/pkg/logger"
)

// Prints a Google Sheets refresh token for SHEETS_REFRESH_TOKEN.
func main() {
	godotenv.Load()

	clientID := os.Getenv("SHEETS_CLIENT_ID")
	clientSecret := os.Getenv("SHEETS_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("SHEETS_CLIENT_ID and SHEETS_CLIENT_SECRET must be set")
	}

	sheetsOAuth := oauth.NewSheetsOAuth(
		clientID,
		clientSecret,
		"",
		"http://localhost:8090/oauth2callback",
		logger.NewLogger("info"),
	)

	// Create a random state
	state := "random-state"

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := sheetsOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		tokenJSON, err := sheetsOAuth.TokenToJSON(token)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Printf("\nToken:\n%s\n", tokenJSON)
		fmt.Printf("\nSHEETS_REFRESH_TOKEN=%s\n\n", token.RefreshToken)

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", sheetsOAuth.GenerateAuthURL(state))

	log.Fatal(http.ListenAndServe(":8090", nil))
}
