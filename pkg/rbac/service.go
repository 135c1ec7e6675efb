package rbac

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/sirupsen/logrus"
)

// Config captures all inputs necessary to initialize the Casbin enforcer.
type Config struct {
	ModelPath  string
	PolicyPath string
	Logger     *logrus.Logger
}

func (c Config) validate() error {
	if c.ModelPath == "" {
		return configError("missing model path")
	}
	if c.PolicyPath == "" {
		return configError("missing policy path")
	}
	return nil
}

func configError(msg string, args ...any) error {
	return fmt.Errorf("rbac: "+msg, args...)
}

// forbiddenError builds a standardized error for denied policies.
func forbiddenError(req Request) error {
	return fmt.Errorf("rbac: %s may not %s on %s: permission denied", req.Subject, req.Action, req.Object)
}

// Service enforces the role axis of authorization. Roles decide which kinds
// of action a user may take; breadth of record visibility is decided
// elsewhere, by the access level hierarchy.
type Service struct {
	cfg      Config
	enforcer *casbin.Enforcer
	logger   *logrus.Entry
	mu       sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "rbac")
	} else {
		logger = logrus.WithField("component", "rbac")
	}

	enf, err := casbin.NewEnforcer(cfg.ModelPath, fileadapter.NewAdapter(cfg.PolicyPath))
	if err != nil {
		return nil, fmt.Errorf("rbac: failed to initialize enforcer: %w", err)
	}
	if err := enf.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("rbac: failed to load policies: %w", err)
	}

	return &Service{
		cfg:      cfg,
		enforcer: enf,
		logger:   logger,
	}, nil
}

// Authorize returns an error if the request is denied.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	allowed, err := s.Check(ctx, req)
	if err != nil {
		return err
	}
	if !allowed {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"subject": req.Subject,
			"object":  req.Object,
			"action":  req.Action,
		}).Warn("rbac denied request")
		return forbiddenError(req)
	}
	return nil
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.enforcer.Enforce(req.Subject, req.Object, req.Action)
	if err != nil {
		return false, fmt.Errorf("rbac: enforce failed: %w", err)
	}
	return res, nil
}

// ReloadPolicy reloads policy data from disk.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("rbac: reload policy failed: %w", err)
	}
	s.logger.WithContext(ctx).Info("rbac policy reloaded")
	return nil
}

// Enforcer exposes the underlying casbin enforcer (read-only usage only).
func (s *Service) Enforcer() *casbin.Enforcer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enforcer
}
