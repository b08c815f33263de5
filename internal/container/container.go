package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/application/service"
)

// Container manages all application dependencies and lifecycle.
// Components are started in dependency order and closed in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	store      port.InvoiceStore
	closeStore func() error

	// Application
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start opens the store and builds the services on top of it.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization", zap.String("store_driver", c.config.Store.Driver))

	// Step 1: Open the invoice store
	bundle, err := ProvideStore(ctx, c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	c.store = bundle.Store
	c.closeStore = bundle.Closer
	c.logger.Info("Store initialized")

	// Step 2: Build application services
	services, err := ProvideServices(c.store, &c.config.Invoice, &c.config.Company, c.logger)
	if err != nil {
		c.releaseStore()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	// Services hold no resources of their own
	c.services = nil

	err := c.releaseStore()

	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		c.logger.Error("Container closed with errors", zap.Error(err))
		return err
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) releaseStore() error {
	if c.closeStore == nil {
		return nil
	}
	closeFn := c.closeStore
	c.closeStore = nil
	if err := closeFn(); err != nil {
		c.logger.Error("Failed to close store", zap.Error(err))
		return fmt.Errorf("close store: %w", err)
	}
	c.logger.Info("Store closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health reports whether the store is reachable. Stores without a Ping are in-process
// and always healthy once opened.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch store := c.store.(type) {
	case nil:
		status.Components["store"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	case port.HealthChecker:
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			status.Components["store"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["store"] = ComponentHealth{Healthy: true, Message: c.config.Store.Driver}
		}
	default:
		status.Components["store"] = ComponentHealth{Healthy: true, Message: c.config.Store.Driver}
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// Store returns the invoice store.
func (c *Container) Store() port.InvoiceStore {
	return c.store
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the container's logger behind the narrow service.Logger shape.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields. Errors become zap.Error
// fields so they keep the "error" key.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
