package tintbar

import (
	"github.com/pkg/browser"
)

// appName is the fixed application name token used in external URIs.
const appName = "tintbar"

// Fixed external URIs. Opening them needs no thread marshalling beyond what
// the OS launch call does itself.
const (
	donationURI      = "https://liberapay.com/" + appName
	tipsURI          = "https://" + appName + ".github.io/tips"
	communityChatURI = "https://discord.gg/" + appName
)

// openURI launches an external URI in the default handler. A launch failure
// is captured here and logged; it never propagates past this boundary.
func openURI(logger Logger, uri string) {
	if err := browser.OpenURL(uri); err != nil {
		logger.Error("Failed to open external URI", "uri", uri, "error", err)
	}
}

// OpenDonationPage opens the donation page.
func OpenDonationPage(logger Logger) {
	openURI(logger, donationURI)
}

// OpenTipsPage opens the usage tips page.
func OpenTipsPage(logger Logger) {
	openURI(logger, tipsURI)
}

// OpenCommunityChat opens the community chat invite.
func OpenCommunityChat(logger Logger) {
	openURI(logger, communityChatURI)
}
