package tintbar

// NotificationID identifies a canned tray notification.
type NotificationID int

// NotificationWelcome is shown once the user approves the license on the
// welcome page.
const NotificationWelcome NotificationID = 1

// AppWindow is the tray-icon/taskbar window, consumed as an external
// collaborator.
type AppWindow interface {
	// ConfigurationChanged tells the window a fresh config snapshot is
	// available. Always invoked on the main thread.
	ConfigurationChanged()

	// PreTranslateMessage offers a raw input message to the window before
	// generic translation and dispatch.
	PreTranslateMessage(msg Message) bool

	// RemoveHideTrayIconOverride clears the first-run suppression that
	// keeps the tray icon hidden until the welcome flow completes.
	RemoveHideTrayIconOverride()

	// SendNotification shows a canned notification.
	SendNotification(id NotificationID)
}
