package config

import "time"

// Config holds relay server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogPretty         bool          `mapstructure:"log_pretty" yaml:"log_pretty"`

	// QueueCapacity bounds each connection's outbound event queue. When a
	// queue is full the relay drops that connection's oldest queued event.
	QueueCapacity int `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	// MaxAttachmentBytes bounds the decoded size of an uploaded file.
	MaxAttachmentBytes int64 `mapstructure:"max_attachment_bytes" yaml:"max_attachment_bytes"`
	// MaxMessageBytes bounds the length of an inbound chat message.
	MaxMessageBytes int `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogPretty:          true,
		QueueCapacity:      64,
		MaxAttachmentBytes: 5 << 20,
		MaxMessageBytes:    4096,
	}
}
