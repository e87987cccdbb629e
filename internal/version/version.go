// ABOUTME: Version information for scrub-go
// ABOUTME: Reported in protocol hellos and command banners
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name sent in device info
	Product = "Scrub Go"

	// Manufacturer is sent in device info
	Manufacturer = "Sendspin"
)
