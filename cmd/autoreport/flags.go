package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/config"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/gmail"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// sources resolves a flag from the given env vars first, then from key in the YAML config file.
func sources(key string, configFile *string, env ...string) cli.ValueSourceChain {
	chain := make([]cli.ValueSource, 0, len(env)+1)
	for _, e := range env {
		chain = append(chain, cli.EnvVar(e))
	}
	chain = append(chain, yaml.YAML(key, altsrc.NewStringPtrSourcer(configFile)))

	return cli.NewValueSourceChain(chain...)
}

func flags() []cli.Flag {
	var configFile string

	return slices.Concat(
		appFlags(&configFile),
		storeFlags(&configFile),
		httpFlags(&configFile),
		googleFlags(&configFile),
		notifyFlags(&configFile),
	)
}

func appFlags(configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: configFile,
		},
		&cli.StringFlag{
			Name:      "source",
			Usage:     "Read attachments from `SOURCE` (gmail or inbox)",
			Value:     config.SourceGmail,
			Sources:   sources("app.source", configFile, "AUTOREPORT_SOURCE"),
			Validator: validateSource,
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Set mailbox search query",
			Value:   gmail.DefaultQuery,
			Sources: sources("app.query", configFile),
		},
		&cli.StringFlag{
			Name:      "inbox-dir",
			Aliases:   []string{"i"},
			Usage:     "Set directory to read attachments from when source is inbox",
			Value:     "inbox",
			Sources:   sources("app.inbox_dir", configFile),
			Validator: validateDirectory,
		},
		&cli.StringFlag{
			Name:    "archive-dir",
			Usage:   "Set directory to archive downloaded attachments to",
			Value:   "data/attachments",
			Sources: sources("app.archive_dir", configFile),
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Set directory to write published files to",
			Value:   "output",
			Sources: sources("app.output_dir", configFile),
		},
		&cli.StringFlag{
			Name:    "schemas",
			Usage:   "Load category schemas from `FILE` instead of the built-in ones",
			Sources: sources("app.schemas", configFile),
		},
		&cli.BoolFlag{
			Name:    "fail-open",
			Usage:   "Treat attachments as new when the hash store cannot be read",
			Sources: sources("app.fail_open", configFile),
		},
		&cli.BoolFlag{
			Name:    "strict-parse",
			Usage:   "Abort the run on the first unparseable attachment",
			Sources: sources("app.strict_parse", configFile),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Set log level (debug, info, warn, error)",
			Value:   "info",
			Sources: sources("log.level", configFile, "LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Set log format (text, json)",
			Value:   "text",
			Sources: sources("log.format", configFile, "LOG_FORMAT"),
		},
	}
}

func storeFlags(configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      "store",
			Usage:     "Set state store driver (sqlite or postgres)",
			Value:     config.DriverSQLite,
			Sources:   sources("store.driver", configFile, "AUTOREPORT_STORE"),
			Validator: validateDriver,
		},
		&cli.StringFlag{
			Name:    "sqlite-path",
			Usage:   "Set SQLite database path",
			Value:   "data/state.sqlite",
			Sources: sources("store.sqlite_path", configFile),
		},
		&cli.DurationFlag{
			Name:    "lock-ttl",
			Usage:   "Set how long a SQLite run lock is held before it may be taken over",
			Value:   30 * time.Minute,
			Sources: sources("store.lock_ttl", configFile),
		},
		&cli.StringFlag{
			Name:    "pg-host",
			Usage:   "Set PostgreSQL host",
			Value:   "localhost",
			Sources: sources("postgresql.host", configFile, "PG_HOST"),
		},
		&cli.StringFlag{
			Name:    "pg-port",
			Usage:   "Set PostgreSQL port",
			Value:   "5432",
			Sources: sources("postgresql.port", configFile, "PG_PORT"),
		},
		&cli.StringFlag{
			Name:    "pg-username",
			Usage:   "Set PostgreSQL username",
			Sources: sources("postgresql.username", configFile, "PG_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "pg-password",
			Usage:   "Set PostgreSQL password",
			Sources: sources("postgresql.password", configFile, "PG_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "pg-dbname",
			Usage:   "Set PostgreSQL database name",
			Value:   "autoreport",
			Sources: sources("postgresql.dbname", configFile, "PG_DBNAME"),
		},
	}
}

func httpFlags(configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: sources("http.host", configFile),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: sources("http.port", configFile, "PORT"),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: sources("http.idle_timeout", configFile),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Second,
			Sources: sources("http.read_timeout", configFile),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout, runs triggered over HTTP must finish within it",
			Value:   10 * time.Minute,
			Sources: sources("http.write_timeout", configFile),
		},
	}
}

func googleFlags(configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "google-credentials",
			Usage:   "Load Google OAuth client from `FILE`",
			Value:   "credentials.json",
			Sources: sources("google.credentials", configFile, "GOOGLE_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:    "google-token",
			Usage:   "Store the Google user token in `FILE`",
			Value:   "token.json",
			Sources: sources("google.token", configFile, "GOOGLE_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "gmail-user",
			Usage:   "Set Gmail user id",
			Value:   gmail.DefaultUser,
			Sources: sources("google.gmail_user", configFile),
		},
		&cli.BoolFlag{
			Name:    "sheets",
			Usage:   "Publish the dataset to Google Sheets",
			Sources: sources("google.sheets", configFile),
		},
		&cli.StringFlag{
			Name:    "spreadsheet-id",
			Usage:   "Publish to spreadsheet `ID`, a new one is created when empty",
			Sources: sources("google.spreadsheet_id", configFile, "SPREADSHEET_ID"),
		},
		&cli.StringFlag{
			Name:    "spreadsheet-title",
			Usage:   "Set title of a newly created spreadsheet",
			Value:   "Auto Report",
			Sources: sources("google.spreadsheet_title", configFile),
		},
		&cli.DurationFlag{
			Name:    "google-timeout",
			Usage:   "Set timeout of a single Google API request",
			Value:   30 * time.Second,
			Sources: sources("google.timeout", configFile),
		},
	}
}

func notifyFlags(configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "slack-webhook",
			Usage:   "Send run notifications to Slack webhook `URL`",
			Sources: sources("notify.slack_webhook", configFile, "SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:    "telegram-token",
			Usage:   "Set Telegram bot token",
			Sources: sources("notify.telegram_token", configFile, "TELEGRAM_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "telegram-chat-id",
			Usage:   "Send run notifications to Telegram chat `ID`",
			Sources: sources("notify.telegram_chat_id", configFile, "TELEGRAM_CHAT_ID"),
		},
		&cli.DurationFlag{
			Name:    "notify-timeout",
			Usage:   "Set timeout of a single notification",
			Value:   10 * time.Second,
			Sources: sources("notify.timeout", configFile),
		},
	}
}

func validateSource(source string) error {
	switch source {
	case config.SourceGmail, config.SourceInbox:
		return nil
	default:
		return fmt.Errorf("unknown source %q", source)
	}
}

func validateDriver(driver string) error {
	switch driver {
	case config.DriverSQLite, config.DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", driver)
	}
}

func validateDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", dir)
		}
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}

	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
