// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// RetryConfig defines backoff for startup connections.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  10,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// Retry runs op until it succeeds, doubling the delay between attempts.
func Retry(ctx context.Context, cfg RetryConfig, name string, log logger.Logger, op func(context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying", name), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"maxAttempts": cfg.MaxAttempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", name, attempt, ctx.Err())
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, err)
}

// Connect creates a Zeebe client and waits until the gateway answers a
// topology request.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (zbc.Client, error) {
	var client zbc.Client
	err := Retry(ctx, retry, "zeebe connection", log, func(ctx context.Context) error {
		c, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: true,
		})
		if err != nil {
			return err
		}
		if err := HealthCheck(ctx, c, config.GetDuration(cfg.RequestTimeout)); err != nil {
			_ = c.Close()
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// HealthCheck sends a topology request with the given timeout.
func HealthCheck(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
