package constants

const (
	// ConfigName is the config file name without extension.
	ConfigName = "config"

	// ConfigFormat is the config file format.
	ConfigFormat = "yaml"

	// ServiceName identifies this service in logs and telemetry.
	ServiceName = "medvault_backend"
)
