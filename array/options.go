package array

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/typebin/compress"
	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/fallback"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/internal/options"
	"github.com/arloliu/typebin/section"
)

// Default codec settings.
const (
	DefaultCompression = format.CompressionLZ4
	DefaultLevel       = 0
)

var defaultLogger atomic.Pointer[zap.Logger]

func init() {
	defaultLogger.Store(zap.NewNop())
}

// SetDefaultLogger sets the logger used by codecs built without WithLogger, including
// codecs built before the call. A nil logger disables logging.
func SetDefaultLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultLogger.Store(logger)
}

type config struct {
	compression format.CompressionType
	level       int
	delta       bool
	shuffle     bool
	serializer  fallback.Serializer
	logger      *zap.Logger
	version     uint8
}

// Option configures a Codec.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		compression: DefaultCompression,
		level:       DefaultLevel,
		delta:       true,
		shuffle:     true,
		serializer:  fallback.Default(),
		version:     converter.DefaultVersion,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidateLevel(cfg.level); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithCompression selects the compression method. CompressionNone stores raw
// little-endian element bytes.
func WithCompression(method format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !method.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownMethod, method)
		}
		c.compression = method

		return nil
	})
}

// WithLevel sets the compression level. The valid range depends on the method and is
// checked when the codec is built; 0 always selects the backend default.
func WithLevel(level int) Option {
	return options.NoError(func(c *config) {
		c.level = level
	})
}

// WithDelta enables or disables delta encoding of diffable element types.
func WithDelta(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.delta = enabled
	})
}

// WithShuffle enables or disables byte shuffling before compression.
func WithShuffle(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.shuffle = enabled
	})
}

// WithFallback sets the serializer for arrays of opaque elements.
func WithFallback(s fallback.Serializer) Option {
	return options.New(func(c *config) error {
		if s == nil {
			return fmt.Errorf("%w: nil fallback serializer", errs.ErrUnsupportedType)
		}
		c.serializer = s

		return nil
	})
}

// WithLogger sets the logger for encoding decisions. Only debug messages are emitted.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

func (c *config) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}

	return defaultLogger.Load()
}

// WithVersion sets the converter version written into the header and required on read.
func WithVersion(version uint8) Option {
	return options.New(func(c *config) error {
		if version > section.MaxVersion {
			return fmt.Errorf("%w: %d > %d", errs.ErrInvalidVersion, version, section.MaxVersion)
		}
		c.version = version

		return nil
	})
}
