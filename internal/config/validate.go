package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateDownloads(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/ytcourier/config.toml"
		}
		return fmt.Errorf("bot token is required. Set YTCOURIER_BOT_TOKEN in the environment or a .env file (config: %s)", defaultPath)
	}
	if c.Telegram.AdminID <= 0 {
		return errors.New("telegram.admin_id must be set (or set YTCOURIER_ADMIN_ID)")
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if err := ensurePositiveMap(map[string]int64{
		"telegram.poll_timeout":    int64(c.Telegram.PollTimeout),
		"downloads.max_batch_size": int64(c.Downloads.MaxBatchSize),
		"downloads.max_file_bytes": c.Downloads.MaxFileBytes,
		"downloads.fetch_timeout":  int64(c.Downloads.FetchTimeout),
	}); err != nil {
		return err
	}
	if c.Downloads.YtDlpBinary == "" {
		return errors.New("downloads.ytdlp_binary must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
