package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smartlife/devicebridge/internal/api/rest"
	"github.com/smartlife/devicebridge/internal/api/websocket"
	"github.com/smartlife/devicebridge/internal/auth"
	"github.com/smartlife/devicebridge/internal/cloud"
	"github.com/smartlife/devicebridge/internal/config"
	"github.com/smartlife/devicebridge/internal/interfaces"
	"github.com/smartlife/devicebridge/internal/mock"
	"github.com/smartlife/devicebridge/internal/pairing"
	"github.com/smartlife/devicebridge/internal/registry"
	"go.uber.org/zap"
)

// LifecycleManager owns every long-lived component of the bridge and
// exposes them to the API layer through explicit accessors.
type LifecycleManager struct {
	config           *config.Config
	store            *mock.Store
	cloudClient      *cloud.Client
	deviceRegistry   *registry.Registry
	pairingManager   *pairing.Manager
	commandValidator *registry.CommandValidator
	wsHub            *websocket.Hub
	tokenService     *auth.TokenService
	logger           *zap.Logger

	restServer *rest.Server

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	wsHub := websocket.NewHub(logger)
	store := mock.NewStore()

	var cloudClient *cloud.Client
	if cfg.Cloud.BaseURL != "" {
		cloudClient = cloud.NewClientWithURL(cfg.Cloud.ClientID, cfg.Cloud.GetCloudSecret(),
			cfg.Cloud.BaseURL, cfg.Cloud.Timeout, logger)
	} else {
		cloudClient = cloud.NewClient(cfg.Cloud.ClientID, cfg.Cloud.GetCloudSecret(),
			cfg.Cloud.Region, cfg.Cloud.Timeout, logger)
	}

	commandValidator, err := registry.NewCommandValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build command validator: %w", err)
	}

	deviceRegistry := registry.NewRegistry(cloudClient, store, wsHub, logger)
	pairingManager := pairing.NewManager(store, wsHub, cfg.Pairing.EZDelay, cfg.Pairing.APDelay, logger)

	var tokenService *auth.TokenService
	if cfg.Auth.Enabled {
		secret := cfg.Auth.GetJWTSecret()
		accessKey := cfg.Auth.GetAccessKey()
		if secret == "" {
			return nil, fmt.Errorf("auth is enabled but %s is not set", cfg.Auth.JWTSecretEnv)
		}
		if accessKey == "" {
			return nil, fmt.Errorf("auth is enabled but %s is not set", cfg.Auth.AccessKeyEnv)
		}
		tokenService = auth.NewTokenService(secret, accessKey, cfg.Auth.TokenTTL)
	}

	return &LifecycleManager{
		config:           cfg,
		store:            store,
		cloudClient:      cloudClient,
		deviceRegistry:   deviceRegistry,
		pairingManager:   pairingManager,
		commandValidator: commandValidator,
		wsHub:            wsHub,
		tokenService:     tokenService,
		logger:           logger,
		currentState:     StateInitializing,
		shutdownChan:     make(chan struct{}),
	}, nil
}

// Start starts the WebSocket hub and the REST API server.
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting device bridge")

	lm.setState(StateInitializing)

	go lm.wsHub.Run()

	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.wsHub, lm.tokenService)
	if err := lm.restServer.Start(); err != nil {
		lm.setState(StateError)
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	lm.setState(StateRunning)

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.Bool("auth_enabled", lm.config.Auth.Enabled))

	return nil
}

// Shutdown gracefully shuts down the system. Any in-flight pairing
// attempt is cancelled and the mock store is dropped with the process;
// nothing is persisted.
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(StateStopping)

		lm.pairingManager.StopPairing()
		lm.store.Reset()

		if lm.restServer != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}

		lm.setState(StateStopped)
		close(lm.shutdownChan)
	})

	return shutdownErr
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()

	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.logger.Warn("Forcing state transition", zap.Error(err))
	}
	lm.currentState = state
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	pairingState, _ := lm.pairingManager.Status()

	return interfaces.SystemStatus{
		State:             lm.currentState.String(),
		TestDeviceCount:   lm.store.Count(),
		PairingInProgress: pairingState == pairing.StateInProgress,
		ConnectedClients:  lm.wsHub.GetClientCount(),
	}
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

// Registry returns the device registry
func (lm *LifecycleManager) Registry() *registry.Registry {
	return lm.deviceRegistry
}

// Pairing returns the pairing session manager
func (lm *LifecycleManager) Pairing() *pairing.Manager {
	return lm.pairingManager
}

// CommandValidator returns the command payload validator
func (lm *LifecycleManager) CommandValidator() *registry.CommandValidator {
	return lm.commandValidator
}
