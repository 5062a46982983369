// Hubspace Bridge - Afero cloud to local infrastructure daemon.
//
// The daemon connects one Hubspace account to the local network: it
// polls the cloud for device state, republishes changes onto MQTT
// topics, records poll telemetry in InfluxDB and serves a REST plus
// WebSocket API for local control. MQTT, InfluxDB and the API are each
// optional; with all three disabled the engine still polls and the
// process is a connectivity check.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	hubspace "github.com/nerrad567/gray-logic-hubspace"
	"github.com/nerrad567/gray-logic-hubspace/internal/api"
	"github.com/nerrad567/gray-logic-hubspace/internal/forwarder"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// A .env file supplies HSBRIDGE_* variables during development.
	// Variables already set in the real environment win.
	_ = godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hubspace bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Set up MQTT logging callbacks
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the bridge over the account
	bridge := hubspace.NewBridge(hubspace.Config{
		Username:     cfg.Account.Username,
		Password:     cfg.Account.Password,
		PollInterval: cfg.GetPollingInterval(),
		Timeout:      cfg.GetRequestTimeout(),
		Logger:       log,
	})

	// Record poll telemetry. The hook must be in place before
	// Initialize so the first poll cycle is captured.
	if influxClient != nil {
		bridge.Events().SetPollHook(func(stats hubspace.PollStats) {
			influxClient.WritePollMetric(stats.Result, stats.Duration,
				stats.Devices, stats.Added, stats.Updated, stats.Deleted, stats.Skipped)
			emitted, dropped := bridge.Events().EventCounters()
			influxClient.WriteEventMetric(emitted, dropped, stats.QueueDepth)
		})
	}

	// Log in, load the device fleet and start the poll engine
	log.Info("connecting to Hubspace", "poll_interval", cfg.GetPollingInterval())
	if err := bridge.Initialize(ctx); err != nil {
		return fmt.Errorf("initialising bridge: %w", err)
	}
	defer func() {
		log.Info("closing bridge")
		bridge.Close()
	}()
	log.Info("bridge initialised", "devices", len(bridge.TrackedDevices()))

	// Start the MQTT forwarder (requires the broker)
	if mqttClient != nil {
		fwd, fwdErr := forwarder.New(forwarder.Options{
			Broker:   mqttClient,
			Events:   bridge.Events(),
			Registry: bridge.Events().Registry(),
			Pusher:   bridge,
			Topics:   mqttClient.Topics(),
			QoS:      byte(cfg.MQTT.QoS),
			Logger:   log,
		})
		if fwdErr != nil {
			return fmt.Errorf("creating forwarder: %w", fwdErr)
		}
		if startErr := fwd.Start(); startErr != nil {
			return fmt.Errorf("starting forwarder: %w", startErr)
		}
		defer func() {
			log.Info("stopping forwarder")
			fwd.Stop()
		}()

		// The initial fleet was loaded silently, so publish its
		// retained state documents by hand.
		fwd.Seed(bridge.Resources(""))
	}

	// Start the HTTP API (optional)
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Stream:    bridge.Events(),
			Devices:   bridge,
			Commander: bridge,
			Version:   version,
		}
		// Assign health checkers only for components that exist; a nil
		// *Client in an interface value would pass the server's nil
		// checks and then panic.
		if mqttClient != nil {
			deps.MQTT = mqttClient
		}
		if influxClient != nil {
			deps.Influx = influxClient
		}

		apiServer, apiErr := api.New(deps)
		if apiErr != nil {
			return fmt.Errorf("creating api server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting api server: %w", startErr)
		}
		defer func() {
			log.Info("stopping api server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing api server", "error", closeErr)
			}
		}()
		log.Info("api server started", "listen", cfg.API.Listen)
	} else {
		log.Info("api disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Forwarder (if MQTT enabled)
	// 3. Bridge (stops the poll engine)
	// 4. InfluxDB (if enabled)
	// 5. MQTT (if enabled)

	log.Info("Hubspace bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HSBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HSBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the optional infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Cloud connectivity is verified during Initialize - the bridge
	// authenticates and fetches the full fleet before returning.

	return nil
}
