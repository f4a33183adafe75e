package tintbar

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintbar/tintbar/provision"
)

func TestOnlyOneApplicationPerProcess(t *testing.T) {
	app, err := New(InstanceHandle(1), "", true, WithLogger(&recordingLogger{}))
	require.NoError(t, err)

	_, err = New(InstanceHandle(2), "", true, WithLogger(&recordingLogger{}))
	assert.ErrorIs(t, err, ErrApplicationRunning)

	require.NoError(t, app.Close())

	// Closing releases the claim for the next instance.
	app2, err := New(InstanceHandle(3), "", true, WithLogger(&recordingLogger{}))
	require.NoError(t, err)
	require.NoError(t, app2.Close())
}

func TestNewRejectsNilCollaborators(t *testing.T) {
	_, err := New(InstanceHandle(1), "", true, WithLogger(nil))
	assert.ErrorIs(t, err, ErrLoggerNil)

	_, err = New(InstanceHandle(1), "", true, WithConfigGateway(nil))
	assert.ErrorIs(t, err, ErrGatewayNil)
}

func TestNewProvisionsRuntimeDependencies(t *testing.T) {
	logger := &recordingLogger{}
	registry, err := provision.NewDirectoryRegistry(t.TempDir())
	require.NoError(t, err)
	provisioner, err := provision.NewProvisioner(registry, logger)
	require.NoError(t, err)

	app, err := New(InstanceHandle(1), t.TempDir(), true,
		WithLogger(logger),
		WithProvisioner(provisioner),
	)
	require.NoError(t, err)
	defer app.Close()

	for _, name := range []string{"core-runtime", "ui-toolkit"} {
		installed, err := registry.Installed(context.Background(), name)
		require.NoError(t, err)
		require.Len(t, installed, 1, "package %s", name)
		// A storage folder permits the per-user fallback scope.
		assert.Equal(t, provision.ScopeUser, installed[0].Scope)
	}
}

func TestNewWithoutStorageFolderInstallsMachineScope(t *testing.T) {
	logger := &recordingLogger{}
	registry, err := provision.NewDirectoryRegistry(t.TempDir())
	require.NoError(t, err)
	provisioner, err := provision.NewProvisioner(registry, logger)
	require.NoError(t, err)

	app, err := New(InstanceHandle(1), "", true,
		WithLogger(logger),
		WithProvisioner(provisioner),
	)
	require.NoError(t, err)
	defer app.Close()

	installed, err := registry.Installed(context.Background(), "core-runtime")
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, provision.ScopeMachine, installed[0].Scope)
}

// failingRegistry refuses every lookup.
type failingRegistry struct{}

func (failingRegistry) Installed(context.Context, string) ([]provision.InstalledPackage, error) {
	return nil, assert.AnError
}

func (failingRegistry) Install(context.Context, provision.Descriptor, provision.Scope) error {
	return assert.AnError
}

func TestNewFailsWhenProvisioningFails(t *testing.T) {
	logger := &recordingLogger{}
	provisioner, err := provision.NewProvisioner(failingRegistry{}, logger)
	require.NoError(t, err)

	_, err = New(InstanceHandle(1), "", true,
		WithLogger(logger),
		WithProvisioner(provisioner),
	)
	require.ErrorIs(t, err, provision.ErrProvisioning)
	assert.Equal(t, 1, logger.criticalCount())

	// The failed constructor released the claim.
	app, err := New(InstanceHandle(1), "", true, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestConfigurationChangeReachesAppWindowOnMainThread(t *testing.T) {
	gateway := newCountingGateway()
	tray := newFakeAppWindow()

	app, _ := startApp(t, "", true,
		WithLogger(&recordingLogger{}),
		WithConfigGateway(gateway),
		WithAppWindow(tray),
	)

	observer := newCollectingObserver("config-watcher")
	require.NoError(t, app.RegisterObserver(observer, EventTypeConfigChanged))

	gateway.Replace(&Config{Theme: "dark", Language: "de-DE"})

	event := observer.wait(t)
	assert.Equal(t, EventTypeConfigChanged, event.Type())
	require.Eventually(t, func() bool {
		return tray.configChanged.Load() == 1
	}, 5*time.Second, time.Millisecond)
}

func TestBringWelcomeToFront(t *testing.T) {
	var raised atomic.Uint64

	app, _ := startApp(t, "", false,
		WithLogger(&recordingLogger{}),
		WithForegrounder(func(handle WindowHandle) { raised.Store(uint64(handle)) }),
	)

	awaitWelcomePage(t, app)
	require.True(t, app.BringWelcomeToFront())
	assert.Equal(t, app.welcomeHandle.Load(), raised.Load())
}

func TestApplicationLifecycleEvents(t *testing.T) {
	app, err := New(InstanceHandle(1), "", true, WithLogger(&recordingLogger{}))
	require.NoError(t, err)

	observer := newCollectingObserver("lifecycle")
	require.NoError(t, app.RegisterObserver(observer, EventTypeApplicationStarted, EventTypeApplicationStopped))

	exit := make(chan int, 1)
	go func() { exit <- app.Run() }()

	started := observer.wait(t)
	assert.Equal(t, EventTypeApplicationStarted, started.Type())

	app.Shutdown(0)
	require.Equal(t, 0, <-exit)

	stopped := observer.wait(t)
	assert.Equal(t, EventTypeApplicationStopped, stopped.Type())
	require.NoError(t, app.Close())
}
