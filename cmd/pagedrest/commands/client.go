package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedclient"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest/codec"
	logruslog "github.com/fivetwenty-io/pagedrest/pkg/pagedrest/log/logrus"
	zaplog "github.com/fivetwenty-io/pagedrest/pkg/pagedrest/log/zap"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// createClient builds an API client from the effective configuration,
// prompting for the password when none is configured.
func createClient(cmd *cobra.Command) (pagedrest.Client, error) {
	config := loadConfig()

	password, err := resolvePassword(config.Password, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool("verbose")

	logger, err := newLogger(config.LogFormat, verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	client, err := pagedclient.New(&pagedrest.Config{
		User:       config.User,
		Password:   password,
		Production: config.Production,
		URL:        config.URL,
		Logger:     logger,
		Debug:      verbose,
		Cache:      buildCacheConfig(config.Cache),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func resolvePassword(configured string, prompt io.Writer) (string, error) {
	if configured != "" {
		return configured, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrPasswordNotPresent
	}

	_, _ = fmt.Fprint(prompt, "Password: ")

	bytePassword, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(prompt)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(bytePassword) == 0 {
		return "", constants.ErrPasswordNotPresent
	}

	return string(bytePassword), nil
}

// newLogger returns a zap JSON logger or a logrus text logger writing to w.
// Warnings are always shown; verbose adds debug output.
func newLogger(format string, verbose bool, w io.Writer) (pagedrest.Logger, error) {
	switch format {
	case constants.LogFormatJSON:
		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		)

		return zaplog.ZapLogger{L: zap.New(core)}, nil

	case constants.LogFormatText, "":
		logger := logrus.New()
		logger.SetOutput(w)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		logger.SetLevel(logrus.WarnLevel)

		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		return logruslog.New(logger), nil

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownLogFormat, format)
	}
}

// buildCacheConfig maps CLI cache settings to a cache configuration. The
// "chain" type layers the memory cache over Redis, or NATS when no Redis
// address is set.
func buildCacheConfig(settings CacheSettings) *pagedrest.CacheConfig {
	builder := pagedrest.NewCacheBuilder().
		WithType(pagedrest.CacheType(settings.Type)).
		WithMemoryConfig(settings.MaxSize)

	if settings.RedisAddr != "" {
		builder.WithRedisConfig(&pagedrest.RedisCacheConfig{
			Addr:      settings.RedisAddr,
			DB:        settings.RedisDB,
			Namespace: constants.DefaultCacheNamespace,
			Codec:     codec.Type(settings.Codec),
		})
	}

	if settings.NATSURL != "" {
		builder.WithNATSConfig(&pagedrest.NATSKVConfig{
			URL:    settings.NATSURL,
			Bucket: settings.NATSBucket,
			Codec:  codec.Type(settings.Codec),
		})
	}

	return builder.Config()
}
