package internal

import "os"

// detectSystemLocale returns the locale that governs money formatting.
// Priority is LC_MONETARY (most specific), LC_ALL, then LANG; the C and
// POSIX locales carry no region and are skipped.
func detectSystemLocale() string {
	for _, envVar := range []string{"LC_MONETARY", "LC_ALL", "LANG"} {
		if locale := os.Getenv(envVar); locale != "" && locale != "C" && locale != "POSIX" {
			return locale
		}
	}
	return ""
}
