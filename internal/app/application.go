package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"edge-detector/internal/algorithms"
	"edge-detector/internal/config"
	"edge-detector/internal/logger"
	"edge-detector/internal/pipeline"
)

const (
	AppName    = "edge-detector"
	AppVersion = "1.0.0"
)

// Application owns the registry, the pipeline and the logger for one
// command invocation.
type Application struct {
	Config      config.Config
	Manager     *algorithms.Manager
	Coordinator *pipeline.Coordinator
	logger      logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewApplication(cfg config.Config, log logger.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manager := algorithms.NewManager()
	if err := manager.SetBackend(cfg.Backend); err != nil {
		return nil, err
	}
	if err := manager.SetCurrentAlgorithm(cfg.Filter); err != nil {
		return nil, err
	}
	for _, name := range manager.GetAvailableAlgorithms() {
		if err := manager.SetParameters(name, cfg.Parameters(name)); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	application := &Application{
		Config:      cfg,
		Manager:     manager,
		Coordinator: pipeline.NewCoordinator(manager, log),
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
	}

	log.Debug("Application", "initialization complete", map[string]interface{}{
		"version":  AppVersion,
		"backend":  cfg.Backend,
		"filter":   cfg.Filter,
		"workers":  cfg.Workers,
		"border":   cfg.Border.String(),
		"platform": fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	})
	return application, nil
}

// Context is cancelled on SIGINT/SIGTERM once HandleSignals is called, or
// by Shutdown.
func (a *Application) Context() context.Context {
	return a.ctx
}

func (a *Application) HandleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			a.logger.Info("Application", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			a.cancel()
		case <-a.ctx.Done():
		}
	}()
}

func (a *Application) Shutdown() {
	a.cancel()
}
