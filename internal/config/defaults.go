package config

const (
	defaultConfigPath = "~/.config/manifesto/config.toml"
	defaultCachePath  = "~/.cache/manifesto/summaries.db"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)
