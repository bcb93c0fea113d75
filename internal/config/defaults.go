package config

const (
	defaultCertsDir      = "/config/certs"
	defaultAcmeHome      = "/config/acme"
	defaultAcmeConfig    = "/config/acme/config"
	defaultCronFile      = "/etc/cron.d/certpilot"
	defaultLogDir        = "/config/logs"
	defaultReloadCommand = "nginx -s reload"
	defaultOwnerUser     = "mediapilot"
	defaultOwnerGroup    = "mediapilot"
	defaultACMEClient    = ClientAcmeSh
	defaultCADirectory   = "https://acme-v02.api.letsencrypt.org/directory"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Recognized values for acme.client.
const (
	ClientAcmeSh   = "acme.sh"
	ClientEmbedded = "embedded"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CertsDir:   defaultCertsDir,
			AcmeHome:   defaultAcmeHome,
			AcmeConfig: defaultAcmeConfig,
			CronFile:   defaultCronFile,
			LogDir:     defaultLogDir,
		},
		TLS: TLS{
			ReloadCommand: defaultReloadCommand,
			OwnerUser:     defaultOwnerUser,
			OwnerGroup:    defaultOwnerGroup,
		},
		ACME: ACME{
			Client:         defaultACMEClient,
			CADirectoryURL: defaultCADirectory,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
