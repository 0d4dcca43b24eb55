package config

import (
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	SourceGmail = "gmail"
	SourceInbox = "inbox"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App
	Store
	PostgreSQL
	HTTP
	Google
	Notify
	Log
}

type App struct {
	Source      string
	Query       string
	InboxDir    string
	ArchiveDir  string
	OutputDir   string
	SchemasFile string
	FailOpen    bool
	StrictParse bool
}

type Store struct {
	Driver     string
	SQLitePath string
	LockTTL    time.Duration
}

type PostgreSQL struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Google struct {
	CredentialsFile  string
	TokenFile        string
	User             string
	SpreadsheetID    string
	SpreadsheetTitle string
	SheetsEnabled    bool
	Timeout          time.Duration
}

type Notify struct {
	SlackWebhook   string
	TelegramToken  string
	TelegramChatID string
	Timeout        time.Duration
}

type Log struct {
	Level  string
	Format string
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			Source:      cmd.String("source"),
			Query:       cmd.String("query"),
			InboxDir:    cmd.String("inbox-dir"),
			ArchiveDir:  cmd.String("archive-dir"),
			OutputDir:   cmd.String("output-dir"),
			SchemasFile: cmd.String("schemas"),
			FailOpen:    cmd.Bool("fail-open"),
			StrictParse: cmd.Bool("strict-parse"),
		},
		Store: Store{
			Driver:     cmd.String("store"),
			SQLitePath: cmd.String("sqlite-path"),
			LockTTL:    cmd.Duration("lock-ttl"),
		},
		PostgreSQL: PostgreSQL{
			Host:     cmd.String("pg-host"),
			Port:     cmd.String("pg-port"),
			Username: cmd.String("pg-username"),
			Password: cmd.String("pg-password"),
			DBName:   cmd.String("pg-dbname"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
		Google: Google{
			CredentialsFile:  cmd.String("google-credentials"),
			TokenFile:        cmd.String("google-token"),
			User:             cmd.String("gmail-user"),
			SpreadsheetID:    cmd.String("spreadsheet-id"),
			SpreadsheetTitle: cmd.String("spreadsheet-title"),
			SheetsEnabled:    cmd.Bool("sheets"),
			Timeout:          cmd.Duration("google-timeout"),
		},
		Notify: Notify{
			SlackWebhook:   cmd.String("slack-webhook"),
			TelegramToken:  cmd.String("telegram-token"),
			TelegramChatID: cmd.String("telegram-chat-id"),
			Timeout:        cmd.Duration("notify-timeout"),
		},
		Log: Log{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
	}
}

func mask(s string) string {
	if s == "" {
		return "not set"
	}
	return "set"
}

// Entries lists the effective configuration with secrets masked, in display order.
func (c *Config) Entries() [][2]string {
	return [][2]string{
		{"source", c.Source},
		{"query", c.Query},
		{"inbox_dir", c.InboxDir},
		{"archive_dir", c.ArchiveDir},
		{"output_dir", c.OutputDir},
		{"schemas", c.SchemasFile},
		{"fail_open", strconv.FormatBool(c.FailOpen)},
		{"strict_parse", strconv.FormatBool(c.StrictParse)},
		{"store", c.Driver},
		{"sqlite_path", c.SQLitePath},
		{"lock_ttl", c.LockTTL.String()},
		{"postgresql", c.PostgreSQL.Username + "@" + c.PostgreSQL.Host + ":" + c.PostgreSQL.Port + "/" + c.DBName},
		{"postgresql_password", mask(c.Password)},
		{"http", c.HTTP.Host + ":" + c.HTTP.Port},
		{"google_credentials", c.CredentialsFile},
		{"google_token", c.TokenFile},
		{"gmail_user", c.User},
		{"spreadsheet_id", c.SpreadsheetID},
		{"spreadsheet_title", c.SpreadsheetTitle},
		{"sheets", strconv.FormatBool(c.SheetsEnabled)},
		{"slack_webhook", mask(c.SlackWebhook)},
		{"telegram", mask(c.TelegramToken)},
		{"telegram_chat_id", c.TelegramChatID},
		{"log", c.Level + "/" + c.Format},
	}
}
