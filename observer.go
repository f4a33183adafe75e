// Package tintbar implements the application lifecycle and cross-thread
// coordination core of a desktop shell-customization tool. It owns process
// startup, the native message loop, dynamic dependency provisioning,
// creation and teardown of secondary UI-hosting threads, and an orderly,
// cancellable shutdown protocol that polls every UI window before the
// process may exit.
//
// Cross-component notifications use the Observer pattern over the
// CloudEvents specification for standardized event format.
package tintbar

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Observer defines the interface for objects that want to be notified of
// events. Observers register with Subjects to receive notifications when
// events occur. Events use the CloudEvents specification.
type Observer interface {
	// OnEvent is called when an event occurs that the observer is
	// interested in. Observers should handle events quickly to avoid
	// blocking other observers.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer, used for
	// registration tracking and debugging.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
// The Application is the core Subject.
type Subject interface {
	// RegisterObserver adds an observer to receive notifications,
	// optionally filtered by event type. An empty filter receives all
	// events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Idempotent.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all registered observers without
	// blocking the caller.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
}

// EventType constants for application events, using reverse domain notation
// per the CloudEvents specification.
const (
	// Application lifecycle events
	EventTypeApplicationStarted = "com.tintbar.application.started"
	EventTypeApplicationStopped = "com.tintbar.application.stopped"

	// Configuration events
	EventTypeConfigChanged = "com.tintbar.config.changed"
	EventTypeConfigSaved   = "com.tintbar.config.saved"
	EventTypeConfigDeleted = "com.tintbar.config.deleted"

	// UI hosting events
	EventTypeThreadStarted = "com.tintbar.thread.started"
	EventTypeThreadStopped = "com.tintbar.thread.stopped"
	EventTypeWindowCreated = "com.tintbar.window.created"
	EventTypeWindowClosed  = "com.tintbar.window.closed"

	// Welcome flow events
	EventTypeWelcomeShown     = "com.tintbar.welcome.shown"
	EventTypeWelcomeApproved  = "com.tintbar.welcome.approved"
	EventTypeWelcomeDismissed = "com.tintbar.welcome.dismissed"

	// Shutdown protocol events
	EventTypeShutdownRequested = "com.tintbar.shutdown.requested"
	EventTypeShutdownBlocked   = "com.tintbar.shutdown.blocked"
	EventTypeShutdownCompleted = "com.tintbar.shutdown.completed"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience.
type CloudEvent = cloudevents.Event

// NewCloudEvent creates a properly formatted CloudEvent.
func NewCloudEvent(eventType, source string, data interface{}, metadata map[string]interface{}) cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}

	for key, value := range metadata {
		event.SetExtension(key, value)
	}

	return event
}

// generateEventID generates a unique identifier for CloudEvents using
// UUIDv7, which carries timestamp information for time-ordered uniqueness.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails for any reason
		id = uuid.New()
	}
	return id.String()
}

// ValidateCloudEvent validates that an event conforms to the specification.
func ValidateCloudEvent(event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// FunctionalObserver provides a simple way to create observers from
// functions without defining full structs.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that delegates to handler.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements Observer by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements Observer by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
