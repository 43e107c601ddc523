// llu-report is a non-interactive walkthrough of the LibreLinkUp API:
// it authenticates, prints the account and its patient connections, and
// dumps each patient's latest glucose data to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"lluview/internal/config"
	"lluview/internal/llu"
	"lluview/internal/logging"
	"lluview/internal/render"
)

func main() {
	showLogbook := flag.Bool("logbook", false, "also fetch each patient's logbook")
	showSettings := flag.Bool("notifications", false, "also fetch notification settings per connection")
	country := flag.String("country", "", "look up the service config for a 2-letter country code and exit")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fatal("loading config: %v", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: true})

	clientCfg := llu.Config{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		Version: cfg.Version,
		Product: cfg.Product,
		Timeout: cfg.Timeout,
	}

	if *country != "" {
		// Country config needs no credentials.
		c := llu.NewClient("", "", clientCfg, logger)
		raw, err := c.GetCountryConfig(ctx, *country)
		if err != nil {
			fatal("fetching country config: %v", err)
		}
		var pretty map[string]any
		json.Unmarshal(raw, &pretty)
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}

	if !cfg.HasCredentials() {
		fatal("LIBRE_EMAIL and LIBRE_PASSWORD must be set")
	}

	client := llu.NewClient(cfg.Email, cfg.Password, clientCfg, logger)

	fmt.Println("=== LibreLinkUp Report ===")
	logger.Info().Str("email", llu.MaskValue(cfg.Email)).Msg("authenticating")

	ticket, err := client.Authenticate(ctx)
	if err != nil {
		fatal("authentication failed: %v", err)
	}
	fmt.Println("✓ Authenticated")
	fmt.Printf("  Endpoint:      %s\n", client.BaseURL())
	fmt.Printf("  Token expires: %s\n", ticket.ExpiresAt().Format(time.RFC1123))
	fmt.Printf("  Duration:      %.1f hours\n", float64(ticket.Duration)/3600)

	if user, err := client.GetCurrentUser(ctx); err != nil {
		fmt.Printf("✗ user profile: %v\n", err)
	} else {
		fmt.Println("\n=== User Profile ===")
		fmt.Printf("  Name:    %s %s\n", user.FirstName, user.LastName)
		fmt.Printf("  Email:   %s\n", user.Email)
		fmt.Printf("  Country: %s\n", user.Country)
	}

	if account, err := client.GetAccount(ctx); err != nil {
		fmt.Printf("✗ account: %v\n", err)
	} else {
		fmt.Println("\n=== Account ===")
		fmt.Printf("  Created:    %s\n", time.Unix(account.User.Created, 0).Format(time.RFC1123))
		fmt.Printf("  Last login: %s\n", time.Unix(account.User.LastLogin, 0).Format(time.RFC1123))
	}

	conns, err := client.ListConnections(ctx)
	if err != nil {
		fatal("fetching connections: %v", err)
	}
	fmt.Printf("\n=== Patient Connections (%d) ===\n", len(conns))
	if len(conns) == 0 {
		fmt.Println("  No patient connections found.")
		return
	}

	for _, conn := range conns {
		fmt.Printf("\n%s (id %s)\n", conn.Name(), conn.PatientID)
		if conn.TargetLow > 0 || conn.TargetHigh > 0 {
			fmt.Printf("  Target range: %.0f-%.0f mg/dL\n", conn.TargetLow, conn.TargetHigh)
		}
		reportGraph(ctx, client, conn.PatientID)

		if *showLogbook {
			reportLogbook(ctx, client, conn.PatientID)
		}
		if *showSettings {
			raw, err := client.GetNotificationSettings(ctx, conn.ID)
			if err != nil {
				fmt.Printf("  ✗ notification settings: %v\n", err)
			} else {
				fmt.Printf("  Notification settings: %s\n", raw)
			}
		}
	}
}

func reportGraph(ctx context.Context, client *llu.Client, patientID string) {
	graph, err := client.GetPatientGraph(ctx, patientID)
	if err != nil {
		fmt.Printf("  ✗ glucose data: %v\n", err)
		return
	}
	if cur := graph.Current; cur != nil {
		fmt.Printf("  Latest: %s at %s", render.FormatReading(*cur), cur.Timestamp)
		if cur.TrendMessage != "" {
			fmt.Printf(" (%s)", cur.TrendMessage)
		}
		fmt.Println()
	}
	if n := len(graph.GraphData); n > 0 {
		values := make([]float64, n)
		for i, r := range graph.GraphData {
			values[i] = r.Value
		}
		fmt.Printf("  History (%d readings): %s\n", n, render.Sparkline(values, 60))
	}
}

func reportLogbook(ctx context.Context, client *llu.Client, patientID string) {
	entries, err := client.GetPatientLogbook(ctx, patientID)
	if err != nil {
		fmt.Printf("  ✗ logbook: %v\n", err)
		return
	}
	fmt.Printf("  Logbook (%d entries):\n", len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("    %-22s %s", e.Timestamp, render.FormatReading(e.GlucoseMeasurement))
		if e.Alarm != "" {
			line += "  " + e.Alarm
		}
		fmt.Println(line)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
