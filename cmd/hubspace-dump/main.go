// Hubspace Dump - fetch and anonymize an account's device fleet.
//
// The tool logs in, fetches every device with expanded state and writes
// the listing as JSON with identifying values replaced. The output is
// safe to attach to bug reports and doubles as test fixture input:
// device relationships survive anonymization, so a dump exercises the
// same parsing paths as the live account.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/gateway"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env file supplies the account variables during development.
	// Load it before flag registration so the defaults below see it.
	_ = godotenv.Load()

	var (
		username  = flag.String("username", os.Getenv("HSBRIDGE_ACCOUNT_USERNAME"), "account username (defaults to HSBRIDGE_ACCOUNT_USERNAME)")
		password  = flag.String("password", os.Getenv("HSBRIDGE_ACCOUNT_PASSWORD"), "account password (defaults to HSBRIDGE_ACCOUNT_PASSWORD)")
		out       = flag.String("out", "hubspace-dump.json", "output path, or - for stdout")
		anonNames = flag.Bool("anon-names", false, "replace friendly names with numbered placeholders")
		timeout   = flag.Duration("timeout", time.Minute, "overall fetch timeout")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		return fmt.Errorf("username and password are required (flags or HSBRIDGE_ACCOUNT_* environment variables)")
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := gateway.NewClient(*username, *password, nil)
	snaps, err := client.FetchSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("fetching devices: %w", err)
	}

	anon := device.NewAnonymizer().Snapshots(snaps, *anonNames)

	data, err := json.MarshalIndent(anon, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dump: %w", err)
	}
	data = append(data, '\n')

	if *out == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("writing dump: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d devices to %s\n", len(anon), *out)
	return nil
}
