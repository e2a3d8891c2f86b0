package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
)

// StartTimeLayout is the RACE_START_TIME format.
const StartTimeLayout = "2006-01-02 15:04:05"

const (
	SourceJSON   = "json"
	SourceSheets = "sheets"
)

type Config struct {
	TelegramToken string

	RaceStart   *time.Time
	LapDuration time.Duration
	TotalLaps   int

	// ChatID is an optional fixed channel audience; 0 means none.
	ChatID int64

	DataSource               string
	DataFile                 string
	SpreadsheetID            string
	GoogleServiceAccountJSON string
	SheetRange               string
	SnapshotTTL              time.Duration

	TickInterval      time.Duration
	ReplaySkippedLaps bool
	WindowRadius      int

	HTTPAddr     string
	ExportSecret string

	LogLevel    string
	LogEncoding string
}

func FromEnv() (Config, error) {
	var c Config
	c.TelegramToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))

	loc := time.Local
	if tz := strings.TrimSpace(os.Getenv("RACE_TIMEZONE")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return c, fmt.Errorf("%w: RACE_TIMEZONE %q: %v", apperrors.ErrConfiguration, tz, err)
		}
		loc = l
	}
	if raw := strings.TrimSpace(os.Getenv("RACE_START_TIME")); raw != "" {
		start, err := time.ParseInLocation(StartTimeLayout, raw, loc)
		if err != nil {
			return c, fmt.Errorf("%w: RACE_START_TIME %q, use format YYYY-MM-DD HH:MM:SS", apperrors.ErrConfiguration, raw)
		}
		c.RaceStart = &start
	}

	lapSeconds, err := getEnvAsInt("LAP_DURATION", 20)
	if err != nil {
		return c, err
	}
	c.LapDuration = time.Duration(lapSeconds) * time.Second
	if c.TotalLaps, err = getEnvAsInt("TOTAL_LAPS", 12); err != nil {
		return c, err
	}

	if raw := strings.TrimSpace(os.Getenv("CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("%w: CHAT_ID %q is not an integer", apperrors.ErrConfiguration, raw)
		}
		c.ChatID = id
	}

	c.DataSource = strings.ToLower(getEnv("DATA_SOURCE", SourceJSON))
	c.DataFile = getEnv("RACE_DATA_FILE", "race_2_results.json")
	c.SpreadsheetID = getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	c.SheetRange = getEnv("GOOGLE_SHEETS_RANGE", "Results")
	if c.SnapshotTTL, err = getEnvAsDuration("SNAPSHOT_TTL", 0); err != nil {
		return c, err
	}

	if c.TickInterval, err = getEnvAsDuration("TICK_INTERVAL", 5*time.Second); err != nil {
		return c, err
	}
	if c.ReplaySkippedLaps, err = getEnvAsBool("REPLAY_SKIPPED_LAPS", true); err != nil {
		return c, err
	}
	if c.WindowRadius, err = getEnvAsInt("WINDOW_RADIUS", 2); err != nil {
		return c, err
	}

	c.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if _, set := os.LookupEnv("HTTP_ADDR"); !set {
		c.HTTPAddr = ":8080"
	}
	c.ExportSecret = getEnv("EXPORT_SECRET", "change-me")

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogEncoding = getEnv("LOG_ENCODING", "console")

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.LapDuration <= 0 {
		return fmt.Errorf("%w: LAP_DURATION must be positive", apperrors.ErrConfiguration)
	}
	if c.TotalLaps <= 0 {
		return fmt.Errorf("%w: TOTAL_LAPS must be positive", apperrors.ErrConfiguration)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: TICK_INTERVAL must be positive", apperrors.ErrConfiguration)
	}
	if c.WindowRadius < 0 {
		return fmt.Errorf("%w: WINDOW_RADIUS must not be negative", apperrors.ErrConfiguration)
	}
	switch c.DataSource {
	case SourceJSON:
		if c.DataFile == "" {
			return fmt.Errorf("%w: RACE_DATA_FILE is empty", apperrors.ErrConfiguration)
		}
	case SourceSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("%w: GOOGLE_SHEETS_SPREADSHEET_ID is empty", apperrors.ErrConfiguration)
		}
		if c.GoogleServiceAccountJSON == "" {
			return fmt.Errorf("%w: GOOGLE_SERVICE_ACCOUNT_JSON is empty", apperrors.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown DATA_SOURCE %q", apperrors.ErrConfiguration, c.DataSource)
	}
	return nil
}

// RequireTelegram is checked by commands that talk to Telegram.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("%w: BOT_TOKEN is empty", apperrors.ErrConfiguration)
	}
	return nil
}

func (c Config) Clock() raceclock.Config {
	return raceclock.Config{
		Start:       c.RaceStart,
		LapDuration: c.LapDuration,
		TotalLaps:   c.TotalLaps,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", apperrors.ErrConfiguration, key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a duration such as 5s", apperrors.ErrConfiguration, key, valueStr)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q is not a boolean", apperrors.ErrConfiguration, key, valueStr)
	}
	return value, nil
}
