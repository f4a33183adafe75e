package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tintbar/tintbar"
	"github.com/tintbar/tintbar/config"
	"github.com/tintbar/tintbar/provision"
)

// zapLogger adapts a zap.SugaredLogger to the tintbar.Logger interface.
type zapLogger struct {
	log *zap.SugaredLogger
}

func (l *zapLogger) Info(msg string, args ...any)  { l.log.Infow(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.log.Errorw(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.log.Warnw(msg, args...) }
func (l *zapLogger) Debug(msg string, args ...any) { l.log.Debugw(msg, args...) }

func main() {
	os.Exit(run())
}

func run() int {
	var (
		storageDir = flag.String("storage", defaultStorageDir(), "per-user storage directory; empty runs in portable mode")
		configFile = flag.String("config", "config.toml", "configuration file name inside the storage directory")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zlog, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer zlog.Sync()
	logger := &zapLogger{log: zlog.Sugar()}

	configPath := *configFile
	if *storageDir != "" {
		configPath = filepath.Join(*storageDir, *configFile)
	}

	gateway, err := config.New(configPath, logger)
	if err != nil {
		logger.Error("Failed to open configuration", "path", configPath, "error", err)
		return 1
	}
	fileExists := gateway.Exists()
	if err := gateway.Watch(); err != nil {
		logger.Warn("Configuration changes will not be picked up", "error", err)
	}
	defer gateway.Close()

	opts := []tintbar.Option{
		tintbar.WithLogger(logger),
		tintbar.WithConfigGateway(gateway),
	}

	if *storageDir != "" {
		registry, err := provision.NewDirectoryRegistry(filepath.Join(*storageDir, "packages"))
		if err != nil {
			logger.Error("Failed to open package registry", "error", err)
			return 1
		}
		provisioner, err := provision.NewProvisioner(registry, logger)
		if err != nil {
			logger.Error("Failed to create provisioner", "error", err)
			return 1
		}
		opts = append(opts,
			tintbar.WithProvisioner(provisioner),
			tintbar.WithStartupManager(tintbar.NewMarkerStartup(filepath.Join(*storageDir, "startup"), logger)),
		)
	}

	app, err := tintbar.New(tintbar.InstanceHandle(os.Getpid()), *storageDir, fileExists, opts...)
	if err != nil {
		if errors.Is(err, tintbar.ErrApplicationRunning) {
			logger.Warn("Another instance is already running in this process")
			return 0
		}
		logger.Error("Failed to start", "error", err)
		return 1
	}
	defer app.Close()

	return app.Run()
}

func defaultStorageDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "tintbar")
}
