//go:build !windows

package i18n

// getPlatformLocales has nothing to add outside Windows; the locale
// environment variables already cover it.
func getPlatformLocales() []string {
	return nil
}
