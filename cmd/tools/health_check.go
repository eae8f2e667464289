package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	fmt.Println("coffeeStatApp Health Check Utility")
	fmt.Println("----------------------------------")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := checkServiceHealth(ctx, *url); err != nil {
		color.Red("Service is NOT healthy: %v", err)
		os.Exit(1)
	}
	color.Green("Service is healthy!")
}

// checkServiceHealth expects /health to answer 200 with {"status":"ok"}
func checkServiceHealth(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if body["status"] != "ok" {
		return fmt.Errorf("status %q", body["status"])
	}
	return nil
}
