package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/HerbHall/sentinel/internal/inventory"
	"github.com/HerbHall/sentinel/internal/version"
)

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "base URL of a running Sentinel server")
	format := fs.String("format", inventory.FormatCSV, "export format: csv or xlsx")
	storeID := fs.String("store", "", "only export assets of this store")
	output := fs.String("output", "", "output file path (default: inventario-{timestamp}.{format})")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *output == "" {
		*output = fmt.Sprintf("inventario-%s.%s", time.Now().Format("20060102-150405"), *format)
	}

	if err := downloadExport(*serverURL, *format, *storeID, *output); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Inventory exported: %s\n", *output)
}

// downloadExport fetches the inventory export from a running server and
// writes it to output.
func downloadExport(serverURL, format, storeID, output string) error {
	client := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", version.UserAgent())

	req := client.R().SetQueryParam("format", format)
	if storeID != "" {
		req.SetQueryParam("store_id", storeID)
	}
	resp, err := req.Get("/api/v1/inventory/export")
	if err != nil {
		return fmt.Errorf("request export: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("server returned %s: %s", resp.Status(), resp.String())
	}
	if err := os.WriteFile(output, resp.Body(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
