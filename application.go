package tintbar

import (
	"context"
	"sync/atomic"

	"github.com/tintbar/tintbar/dispatch"
	"github.com/tintbar/tintbar/provision"
)

// InstanceHandle is the opaque OS handle of the running process instance.
type InstanceHandle uintptr

// applicationLive enforces the one-instance-per-process invariant. Close
// releases it so tests can construct applications sequentially.
var applicationLive atomic.Bool

// Runtime packages every installation must satisfy before the rest of the
// application initializes. Both may fall back to per-user installation when
// the process has a private storage folder.
var (
	coreRuntimeDependency = provision.Descriptor{
		Name:       "core-runtime",
		MinVersion: provision.Version{Major: 14, Minor: 0, Build: 30704, Revision: 0},
		PerUser:    true,
	}

	uiToolkitDependency = provision.Descriptor{
		Name:       "ui-toolkit",
		MinVersion: provision.Version{Major: 7, Minor: 2207, Build: 21001, Revision: 0},
		PerUser:    true,
	}
)

// Application is the process-wide lifecycle coordinator. It owns the main
// thread's message loop and dispatch queue, the UI thread hosts, the
// first-run welcome flow and the shutdown orchestration, and brokers every
// cross-thread hop between them.
//
// Exactly one Application may exist per process. The constructor enforces
// this and Close releases the claim.
type Application struct {
	*observerRegistry

	instance      InstanceHandle
	storageFolder string

	logger    Logger
	config    ConfigGateway
	startup   StartupManager
	appWindow AppWindow

	provisioner *provision.Provisioner

	bridge    *dispatch.Bridge
	mainQueue *dispatch.Queue
	msgs      *MessageQueue
	loop      *MainLoop
	hosts     *HostManager

	welcomeFactory PageFactory

	welcomeHandle    atomic.Uint64
	shutdownInFlight atomic.Bool
}

// Option configures an Application during construction.
type Option func(*Application)

// WithLogger replaces the no-op default logger.
func WithLogger(logger Logger) Option {
	return func(app *Application) { app.logger = logger }
}

// WithConfigGateway replaces the in-memory default gateway.
func WithConfigGateway(gateway ConfigGateway) Option {
	return func(app *Application) { app.config = gateway }
}

// WithStartupManager installs the OS startup registration subsystem. Without
// one the welcome flow skips startup registration entirely.
func WithStartupManager(startup StartupManager) Option {
	return func(app *Application) { app.startup = startup }
}

// WithAppWindow installs the main application window collaborator.
func WithAppWindow(window AppWindow) Option {
	return func(app *Application) { app.appWindow = window }
}

// WithProvisioner installs the runtime dependency provisioner. Without one
// the runtime packages are assumed present.
func WithProvisioner(p *provision.Provisioner) Option {
	return func(app *Application) { app.provisioner = p }
}

// WithPageFactory replaces the content factory for the welcome window.
func WithPageFactory(factory PageFactory) Option {
	return func(app *Application) { app.welcomeFactory = factory }
}

// WithForegrounder installs the OS shim used to raise hosted windows.
func WithForegrounder(fn func(WindowHandle)) Option {
	return func(app *Application) { app.hosts.SetForegrounder(fn) }
}

// New constructs the process's Application. fileExists reports whether a
// configuration file was found on disk; its absence marks a first run and
// triggers the welcome flow. storageFolder is the per-user storage directory,
// empty when the process runs without one (portable mode), which disables
// startup registration and restricts dependency provisioning to machine
// scope.
//
// The calling goroutine becomes the main thread; it must call Run to pump
// the loop and Close when done.
func New(instance InstanceHandle, storageFolder string, fileExists bool, opts ...Option) (*Application, error) {
	if !applicationLive.CompareAndSwap(false, true) {
		return nil, ErrApplicationRunning
	}

	app := &Application{
		instance:      instance,
		storageFolder: storageFolder,
		logger:        NopLogger{},
		config:        NewMemoryGateway(DefaultConfig()),
		appWindow:     nopAppWindow{},
	}
	app.welcomeFactory = func() (Page, error) { return NewWelcomePage(), nil }

	app.bridge = dispatch.NewBridge()
	app.mainQueue = app.bridge.NewQueue()
	app.hosts = NewHostManager(app.bridge, app.logger)

	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		applicationLive.Store(false)
		return nil, ErrLoggerNil
	}
	if app.config == nil {
		applicationLive.Store(false)
		return nil, ErrGatewayNil
	}

	app.observerRegistry = newObserverRegistry(app.logger)
	app.hosts.logger = app.logger
	app.hosts.SetNotify(func(eventType string, data any) {
		app.emitEvent(context.Background(), eventType, data)
	})
	app.hosts.RegisterPageFactory(WindowKindWelcome, app.welcomeFactory)

	// Runtime dependencies come first; nothing below is safe without them.
	if app.provisioner != nil {
		allowUserScope := storageFolder != ""
		for _, dep := range []provision.Descriptor{coreRuntimeDependency, uiToolkitDependency} {
			if err := app.provisioner.EnsureDependency(context.Background(), dep, allowUserScope); err != nil {
				app.logger.Error("Failed to provision runtime dependency", criticalArgs("package", dep.Name, "error", err)...)
				applicationLive.Store(false)
				return nil, err
			}
		}
	}

	if err := app.bridge.DesignateMain(app.mainQueue.ID()); err != nil {
		applicationLive.Store(false)
		return nil, err
	}

	app.msgs = NewMessageQueue()
	app.loop = NewMainLoop(app.msgs, app.mainQueue, app.logger)
	app.loop.SetPreTranslate(app.preTranslateMessage)

	app.config.OnConfigurationChanged(app.onConfigurationChanged)

	// The startup registration task is single-use and must be acquired
	// exactly once, before anything can race for it.
	var startupTask *AsyncResult[bool]
	if storageFolder != "" && app.startup != nil {
		task, err := app.startup.AcquireTask()
		if err != nil {
			app.logger.Warn("Startup registration unavailable", "error", err)
		} else {
			startupTask = task
		}
	}

	if !fileExists {
		app.createWelcomePage(startupTask)
	}

	return app, nil
}

// Run pumps the main loop on the calling goroutine until shutdown completes
// and returns the process exit code.
func (app *Application) Run() int {
	app.emitEvent(context.Background(), EventTypeApplicationStarted, map[string]any{"storageFolder": app.storageFolder})

	code := app.loop.Run()

	app.emitEvent(context.Background(), EventTypeApplicationStopped, map[string]any{"exitCode": code})
	return code
}

// Close tears down remaining UI threads and releases the one-instance claim.
func (app *Application) Close() error {
	for t := range app.hosts.Threads() {
		app.hosts.stopThread(t)
	}

	applicationLive.Store(false)
	return nil
}

// BringWelcomeToFront raises the welcome window if one is open and reports
// whether it was. The handle is read without synchronizing against an
// in-flight close; a raise on a just-closed window is harmless.
func (app *Application) BringWelcomeToFront() bool {
	handle := WindowHandle(app.welcomeHandle.Load())
	if handle == 0 {
		return false
	}
	app.hosts.foreground(handle)
	return true
}

// dispatchToMain queues fn on the main thread. During shutdown the main
// queue stops accepting work; late arrivals are dropped and logged.
func (app *Application) dispatchToMain(fn func()) {
	if err := app.bridge.DispatchToMain(fn); err != nil {
		app.logger.Debug("Dropped main-thread dispatch", "error", err)
	}
}

// setWelcomeHandle records the welcome window handle. Zero clears it.
func (app *Application) setWelcomeHandle(handle WindowHandle) {
	app.welcomeHandle.Store(uint64(handle))
}

// preTranslateMessage offers a drained input message to the application
// window first, then to every hosted window.
func (app *Application) preTranslateMessage(msg Message) bool {
	if app.appWindow.PreTranslateMessage(msg) {
		return true
	}
	return app.hosts.PreTranslateMessage(msg)
}

// onConfigurationChanged marshals an external configuration change onto the
// main thread before any dependent sees it.
func (app *Application) onConfigurationChanged(cfg *Config) {
	app.dispatchToMain(func() {
		app.appWindow.ConfigurationChanged()
		app.emitEvent(context.Background(), EventTypeConfigChanged, map[string]any{
			"theme":        cfg.Theme,
			"language":     cfg.Language,
			"hideTrayIcon": cfg.HideTrayIcon,
		})
	})
}

// nopAppWindow stands in when no application window collaborator is wired.
type nopAppWindow struct{}

func (nopAppWindow) ConfigurationChanged()            {}
func (nopAppWindow) PreTranslateMessage(Message) bool { return false }
func (nopAppWindow) RemoveHideTrayIconOverride()      {}
func (nopAppWindow) SendNotification(NotificationID)  {}
