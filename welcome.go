package tintbar

import (
	"context"
	"sync"
)

// WelcomeState tracks the first-run onboarding flow.
type WelcomeState int

const (
	// WelcomeNotShown means no welcome window exists. Flows only leave
	// this state when the persisted configuration file did not previously
	// exist.
	WelcomeNotShown WelcomeState = iota

	// WelcomeShown means the welcome window is up awaiting a decision.
	WelcomeShown

	// WelcomeApproved means the user approved the license.
	WelcomeApproved

	// WelcomeClosedWithoutApproval means the window was dismissed; the
	// process shuts down with exit code 1.
	WelcomeClosedWithoutApproval
)

// WelcomePage is the first-run onboarding content. The page's layout is an
// external concern; the core routes its user intents to the right threads.
type WelcomePage struct {
	mu    sync.Mutex
	state WelcomeState

	closed          handlerSet
	licenseApproved handlerSet
	configEdit      handlerSet
	donationOpen    handlerSet
	chatJoin        handlerSet
}

// NewWelcomePage creates the page in the shown state.
func NewWelcomePage() *WelcomePage {
	return &WelcomePage{state: WelcomeShown}
}

// Kind implements Page.
func (p *WelcomePage) Kind() WindowKind {
	return WindowKindWelcome
}

// State returns the current flow state.
func (p *WelcomePage) State() WelcomeState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Closed subscribes to the window-close-without-approval event and returns
// a revoker. Approval revokes its own subscription before the close event
// that naturally follows approval can fire it.
func (p *WelcomePage) Closed(fn func()) (revoke func()) {
	return p.closed.subscribe(fn)
}

// LicenseApproved subscribes to the approval intent.
func (p *WelcomePage) LicenseApproved(fn func()) (revoke func()) {
	return p.licenseApproved.subscribe(fn)
}

// ConfigEditRequested subscribes to the open-config-in-editor intent.
func (p *WelcomePage) ConfigEditRequested(fn func()) (revoke func()) {
	return p.configEdit.subscribe(fn)
}

// LiberapayOpenRequested subscribes to the donation-page intent.
func (p *WelcomePage) LiberapayOpenRequested(fn func()) (revoke func()) {
	return p.donationOpen.subscribe(fn)
}

// DiscordJoinRequested subscribes to the community-chat intent.
func (p *WelcomePage) DiscordJoinRequested(fn func()) (revoke func()) {
	return p.chatJoin.subscribe(fn)
}

// Dismiss is the user closing the window without approving. The close event
// fires once; later window teardown does not re-fire it.
func (p *WelcomePage) Dismiss() {
	p.mu.Lock()
	if p.state != WelcomeShown {
		p.mu.Unlock()
		return
	}
	p.state = WelcomeClosedWithoutApproval
	p.mu.Unlock()

	p.closed.fire()
}

// Approve is the user accepting the license. The approval handlers run
// first and get the chance to revoke the close subscription; the close
// event that naturally follows approval then fires into whatever
// subscriptions remain.
func (p *WelcomePage) Approve() {
	p.mu.Lock()
	if p.state != WelcomeShown {
		p.mu.Unlock()
		return
	}
	p.state = WelcomeApproved
	p.mu.Unlock()

	p.licenseApproved.fire()
	p.closed.fire()
}

// RequestConfigEdit is the user asking to edit the config file.
func (p *WelcomePage) RequestConfigEdit() {
	p.configEdit.fire()
}

// RequestDonationPage is the user clicking the donation link.
func (p *WelcomePage) RequestDonationPage() {
	p.donationOpen.fire()
}

// RequestCommunityChat is the user clicking the community chat link.
func (p *WelcomePage) RequestCommunityChat() {
	p.chatJoin.fire()
}

// WindowClosed implements ClosedNotifier: tearing the window down counts as
// a dismissal when no decision was made yet.
func (p *WelcomePage) WindowClosed() {
	p.Dismiss()
}

// createWelcomePage drives the onboarding flow. It runs asynchronously with
// respect to the constructor: when a startup registration task was
// requested, the flow awaits it and then awaits enabling auto-start,
// strictly in that order, before the window is created. The registration
// task is single-use, and the close handler would otherwise need to await
// it a second time.
func (app *Application) createWelcomePage(op *AsyncResult[bool]) {
	hasStartup := op != nil

	go func() {
		if op != nil {
			available, err := op.Await(context.Background())
			if err != nil {
				app.logger.Warn("Startup registration task failed", "error", err)
			} else if available {
				if err := app.startup.Enable(context.Background()); err != nil {
					app.logger.Warn("Failed to enable startup registration", "error", err)
				}
			}
		}

		err := app.hosts.CreateWindow(WindowKindWelcome, PositionCenter, func(content Page, handle WindowHandle) {
			page, ok := content.(*WelcomePage)
			if !ok {
				app.logger.Error("Welcome window hosts unexpected content", criticalArgs("kind", string(content.Kind()))...)
				return
			}
			app.configureWelcomePage(page, handle, hasStartup)
		})
		if err != nil {
			app.logger.Error("Failed to create welcome window", criticalArgs("error", err)...)
		}
	}()
}

// configureWelcomePage wires the page's user intents to the threads that
// own the affected state. Runs on the page's UI thread.
func (app *Application) configureWelcomePage(page *WelcomePage, handle WindowHandle, hasStartup bool) {
	app.dispatchToMain(func() {
		app.setWelcomeHandle(handle)
	})
	app.emitEvent(context.Background(), EventTypeWelcomeShown, map[string]any{"handle": uint64(handle)})

	revokeClose := page.Closed(func() {
		app.dispatchToMain(func() {
			app.setWelcomeHandle(0)

			if hasStartup {
				app.startup.Disable()
			}

			if err := app.config.DeleteConfigFile(); err != nil {
				app.logger.Error("Failed to delete configuration file", "error", err)
			}
			app.emitEvent(context.Background(), EventTypeWelcomeDismissed, nil)
			app.Shutdown(1)
		})
	})

	page.LiberapayOpenRequested(func() { OpenDonationPage(app.logger) })
	page.DiscordJoinRequested(func() { OpenCommunityChat(app.logger) })

	page.ConfigEditRequested(func() {
		app.dispatchToMain(func() {
			if err := app.config.EditConfigFile(); err != nil {
				app.logger.Error("Failed to open configuration file for editing", "error", err)
			}
		})
	})

	page.LicenseApproved(func() {
		// Remove the close handler before returning: the close event fires
		// as a natural consequence of approval and must not run the
		// dismissal path.
		revokeClose()

		app.dispatchToMain(func() {
			app.setWelcomeHandle(0)

			// First physical write of the config file.
			if err := app.config.SaveConfig(); err != nil {
				app.logger.Error("Failed to save configuration file", "error", err)
			}
			app.appWindow.RemoveHideTrayIconOverride()
			app.appWindow.SendNotification(NotificationWelcome)
			app.emitEvent(context.Background(), EventTypeWelcomeApproved, nil)

			if err := app.hosts.CloseWindow(handle); err != nil {
				app.logger.Debug("Welcome window already gone", "error", err)
			}
		})
	})
}
