package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeDownloads()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WhitelistPath) == "" {
		c.Paths.WhitelistPath = defaultWhitelistPath
	}
	if c.Paths.WhitelistPath, err = expandPath(c.Paths.WhitelistPath); err != nil {
		return fmt.Errorf("paths.whitelist_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDBPath) == "" {
		c.Paths.HistoryDBPath = defaultHistoryDBPath
	}
	if c.Paths.HistoryDBPath, err = expandPath(c.Paths.HistoryDBPath); err != nil {
		return fmt.Errorf("paths.history_db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	if value, ok := os.LookupEnv("YTCOURIER_BOT_TOKEN"); ok {
		c.Telegram.Token = strings.TrimSpace(value)
	}
	// Environment wins over the config file for the admin identity.
	if value, ok := os.LookupEnv("YTCOURIER_ADMIN_ID"); ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			c.Telegram.AdminID = id
		}
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultPollTimeout
	}
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.MaxBatchSize <= 0 {
		c.Downloads.MaxBatchSize = defaultMaxBatchSize
	}
	if c.Downloads.MaxFileBytes <= 0 {
		c.Downloads.MaxFileBytes = defaultMaxFileBytes
	}
	if c.Downloads.FetchTimeout <= 0 {
		c.Downloads.FetchTimeout = defaultFetchTimeout
	}
	c.Downloads.YtDlpBinary = strings.TrimSpace(c.Downloads.YtDlpBinary)
	if c.Downloads.YtDlpBinary == "" {
		c.Downloads.YtDlpBinary = defaultYtDlpBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
