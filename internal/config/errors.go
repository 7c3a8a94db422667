package config

import "fmt"

// ConfigurationError reports missing or invalid configuration. It is raised
// before any browser is launched.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}
