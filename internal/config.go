package internal

import (
	"fmt"
	"ipk-chat/domain"
	"ipk-chat/errors"
	"ipk-chat/moderation"
	"net"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Host           string `env:"CHAT_HOST,default=127.0.0.1" validate:"required"`
	Port           int    `env:"CHAT_PORT,default=4596" validate:"min=0,max=65535"`
	MetricsAddress string `env:"METRICS_ADDRESS,default=:8050"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	SharedSecret   string `env:"SHARED_SECRET,default=password" validate:"required,max=128"`

	SegmentChunkSize  int           `env:"SEGMENT_CHUNK_SIZE,default=5" validate:"min=0"`
	SegmentChunkDelay time.Duration `env:"SEGMENT_CHUNK_DELAY,default=2s" validate:"min=0"`
	TriggerChunkSize  int           `env:"TRIGGER_CHUNK_SIZE,default=5" validate:"min=0"`
	TriggerChunkDelay time.Duration `env:"TRIGGER_CHUNK_DELAY,default=2s" validate:"min=0"`

	// Comma separated, they replace the embedded lists when set
	BlockedWords string `env:"BLOCKED_WORDS"`
	SegmentWords string `env:"SEGMENT_WORDS"`

	MaxFrameSize    int           `env:"MAX_FRAME_SIZE,default=0" validate:"min=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	ReportInterval  time.Duration `env:"REPORT_INTERVAL,default=30s" validate:"min=0"`
}

// Load reads the configuration from an environment set and validates it.
func Load(es env.EnvSet) (Config, error) {
	var config Config
	if err := env.Unmarshal(es, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func LoadFromEnviron() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) DefaultDelivery() domain.Delivery {
	return domain.Segmented(c.SegmentChunkSize, c.SegmentChunkDelay)
}

func (c Config) TriggeredDelivery() domain.Delivery {
	return domain.Segmented(c.TriggerChunkSize, c.TriggerChunkDelay)
}

func (c Config) BlockedWordsOverride() []string {
	return moderation.ParseList(c.BlockedWords)
}

func (c Config) SegmentWordsOverride() []string {
	return moderation.ParseList(c.SegmentWords)
}
