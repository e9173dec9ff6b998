package config

import (
	"flag"
	"io"
	"strconv"
)

// CLIFlags holds command-line overrides. A nil field means the flag was not
// given, so the value from the lower layers stands.
type CLIFlags struct {
	Port       *string
	LogLevel   *string
	DSN        *string
	NatsURL    *string
	ConfigPath *string
	// Rollback undoes the last N migrations and exits instead of serving.
	Rollback *int
}

// ParseFlags parses command-line arguments into CLIFlags. Flags not present
// in args stay nil. Long and short forms are accepted (--port / -p,
// --config / -c).
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("synod", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("port", "", "HTTP listen port")
	fs.String("p", "", "HTTP listen port (shorthand)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("dsn", "", "PostgreSQL connection string")
	fs.String("nats-url", "", "NATS server URL")
	fs.String("config", "", "path to YAML config file")
	fs.String("c", "", "path to YAML config file (shorthand)")
	fs.Int("rollback", 0, "roll back the last N database migrations and exit")

	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, err
	}

	var flags CLIFlags
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "port", "p":
			flags.Port = &v
		case "log-level":
			flags.LogLevel = &v
		case "dsn":
			flags.DSN = &v
		case "nats-url":
			flags.NatsURL = &v
		case "config", "c":
			flags.ConfigPath = &v
		case "rollback":
			if n, err := strconv.Atoi(v); err == nil {
				flags.Rollback = &n
			}
		}
	})
	return flags, nil
}

// applyCLI overlays the given flags onto cfg. Nil fields are skipped.
func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
}
