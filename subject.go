package tintbar

import (
	"context"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// observerRegistration holds information about a registered observer.
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// observerRegistry implements Subject. The Application embeds it so every
// subsystem can observe lifecycle, configuration and shutdown events.
type observerRegistry struct {
	logger Logger

	observerMutex sync.RWMutex
	observers     map[string]*observerRegistration
}

func newObserverRegistry(logger Logger) *observerRegistry {
	return &observerRegistry{
		logger:    logger,
		observers: make(map[string]*observerRegistration),
	}
}

// RegisterObserver adds an observer, optionally filtered by event type.
func (r *observerRegistry) RegisterObserver(observer Observer, eventTypes ...string) error {
	r.observerMutex.Lock()
	defer r.observerMutex.Unlock()

	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	r.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}

	r.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer. Idempotent.
func (r *observerRegistry) UnregisterObserver(observer Observer) error {
	r.observerMutex.Lock()
	defer r.observerMutex.Unlock()

	if _, exists := r.observers[observer.ObserverID()]; exists {
		delete(r.observers, observer.ObserverID())
		r.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}

	return nil
}

// NotifyObservers sends a CloudEvent to all interested observers. Delivery
// happens in goroutines so the caller is never blocked; observer errors and
// panics are logged and swallowed.
func (r *observerRegistry) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	r.observerMutex.RLock()
	defer r.observerMutex.RUnlock()

	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}

	if err := ValidateCloudEvent(event); err != nil {
		r.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	for _, registration := range r.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}

		go func(registration *observerRegistration) {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("Observer panicked", "observerID", registration.observer.ObserverID(), "event", event.Type(), "panic", rec)
				}
			}()

			if err := registration.observer.OnEvent(ctx, event); err != nil {
				r.logger.Error("Observer error", "observerID", registration.observer.ObserverID(), "event", event.Type(), "error", err)
			}
		}(registration)
	}

	return nil
}

// emitEvent builds and delivers an event with the application as source.
func (r *observerRegistry) emitEvent(ctx context.Context, eventType string, data interface{}) {
	event := NewCloudEvent(eventType, "application", data, nil)
	if err := r.NotifyObservers(ctx, event); err != nil {
		r.logger.Error("Failed to emit event", "eventType", eventType, "error", err)
	}
}
