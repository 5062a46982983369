package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceReader provides read access to the bridge's tracked device models.
// An empty category matches every device.
type DeviceReader interface {
	Resource(id string) (event.Resource, bool)
	Resources(category device.Category) []event.Resource
}

// Commander pushes raw state values to a device and folds the accepted
// values back into the tracked models.
type Commander interface {
	SendCommand(ctx context.Context, deviceID string, values []device.State) ([]device.State, error)
}

// HealthChecker reports component liveness for the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Stream    *event.Stream
	Devices   DeviceReader
	Commander Commander
	MQTT      HealthChecker // optional, nil when MQTT is disabled
	Influx    HealthChecker // optional, nil when InfluxDB is disabled
	Version   string
}

// Server is the bridge's HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	logger       *logging.Logger
	stream       *event.Stream
	devices      DeviceReader
	commander    Commander
	mqttHealth   HealthChecker
	influxHealth HealthChecker
	version      string

	server      *http.Server
	hub         *Hub
	started     time.Time
	cancel      context.CancelFunc // cancels background goroutines on Close()
	unsubscribe func()             // detaches the WebSocket relay from the event stream
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, stream, device reader, commander)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Stream == nil {
		return nil, fmt.Errorf("event stream is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device reader is required")
	}
	if deps.Commander == nil {
		return nil, fmt.Errorf("commander is required")
	}

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		stream:       deps.Stream,
		devices:      deps.Devices,
		commander:    deps.Commander,
		mqttHealth:   deps.MQTT,
		influxHealth: deps.Influx,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, attaches the event relay to the stream,
// and launches the HTTP listener in a background goroutine. The server
// is stopped with Close().
//
// Parameters:
//   - ctx: Context governing background goroutines
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.logger)
	go s.hub.Run(srvCtx)

	// Relay every stream event to WebSocket subscribers.
	s.unsubscribe = s.stream.Subscribe(s.relayEvent, nil, nil)

	s.server = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}
	s.started = time.Now()

	go func() {
		s.logger.Info("api server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It detaches from the event stream, disconnects WebSocket clients, and
// waits up to 10 seconds for in-flight requests to complete.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
