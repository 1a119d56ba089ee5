package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Health and scrape endpoints stay public
	return []string{"/health", "/metrics"}
}
