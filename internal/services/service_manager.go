package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/events"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/stats"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Session SessionOptions

	StatsMaxAgeDays int
	DefaultTimeout  time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	documentService DocumentService
	sessionService  SessionService
	statsService    StatsService
	exportService   ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	repo repositories.Repository,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		repo:      repo,
		cache:     cm,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(
	repo repositories.Repository,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	config := ServiceManagerConfig{
		Session: SessionOptions{
			SnapshotTTL: cache.SessionCacheConfig.TTL,
			EventsTopic: events.DefaultTopic,
		},
		StatsMaxAgeDays: stats.DefaultMaxAgeDays,
		DefaultTimeout:  30 * time.Second,
	}

	return NewServiceManager(repo, cm, publisher, logger, validator, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.documentService = NewDocumentService(sm.repo, sm.cache, sm.logger, sm.validator)
	sm.logger.Info("Document service initialized")

	sm.sessionService = NewSessionService(sm.repo, sm.cache, sm.publisher, sm.logger, sm.validator, sm.config.Session)
	sm.logger.Info("Session service initialized",
		"question_timer", sm.config.Session.QuestionTimerEnabled,
		"snapshot_ttl", sm.config.Session.SnapshotTTL)

	sm.statsService = NewStatsService(sm.repo, sm.cache, sm.publisher, sm.logger, sm.validator,
		sm.config.Session.EventsTopic, sm.config.StatsMaxAgeDays)
	sm.logger.Info("Stats service initialized")

	sm.exportService = NewExportService(sm.statsService, sm.logger)
	sm.logger.Info("Export service initialized")

	if err := sm.repo.Ping(ctx); err != nil {
		// snapshots and caching degrade, sessions still run in memory
		sm.logger.Warn("Repository health check failed", "error", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Document() DocumentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.documentService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.sessionService
}

func (sm *serviceManager) Stats() StatsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.statsService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.config.DefaultTimeout)
		defer cancel()
	}

	// Check repository health
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// running without Redis is a supported mode
	if err := sm.cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down all services
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	var errs []error
	if sm.sessionService != nil {
		if err := sm.sessionService.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session service: %w", err))
		}
	}
	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher: %w", err))
		}
	}

	sm.shutdown = true
	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	sm.logger.Info("Service manager shut down successfully")
	return nil
}
