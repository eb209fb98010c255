package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/config"
)

func main() {
	userID := flag.Int64("user", 1, "User ID")
	email := flag.String("email", "conductor@example.com", "Email address")
	role := flag.String("role", "conductor", "Role (student|conductor|admin)")
	flag.Parse()

	cfg := config.Load()
	jwtService := auth.NewJWTService(cfg.JWT)

	token, err := jwtService.GenerateToken(*userID, *email, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User ID: %d\nEmail:   %s\nRole:    %s\n\n", *userID, *email, *role)
	fmt.Printf("Authorization: Bearer %s\n\n", token)
	fmt.Printf("Example curl:\n")
	fmt.Printf("curl -X POST http://localhost:5000/bus/update-location \\\n")
	fmt.Printf("  -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"busId\": 1, \"latitude\": 12.9716, \"longitude\": 77.5946, \"speed\": 32.5}'\n")
}
