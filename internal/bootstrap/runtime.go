// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"campusbridge/internal/cache"
	"campusbridge/internal/config"
	"campusbridge/internal/database"
	"campusbridge/internal/events"
	"campusbridge/internal/notifications"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connections a command needs.
type Runtime struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Events events.Publisher
	kafka  *events.KafkaPublisher
}

// InitRuntime connects to the database and Redis and builds the configured
// event publisher. Redis is optional unless EVENTS_SINK=redis.
func InitRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May leave the client nil if Redis is unreachable.
	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient()}

	if err := rt.initEvents(cfg); err != nil {
		return nil, err
	}
	logger.Info("event sink configured", slog.String("sink", rt.Events.Name()))
	return rt, nil
}

func (rt *Runtime) initEvents(cfg *config.Config) error {
	switch cfg.EventsSink {
	case config.EventsSinkKafka:
		brokers := cfg.Brokers()
		if len(brokers) == 0 {
			return errors.New("EVENTS_SINK=kafka requires KAFKA_BROKERS")
		}
		rt.kafka = events.NewKafkaPublisher(brokers, cfg.KafkaTopicReviews, cfg.KafkaTopicReports)
		rt.Events = rt.kafka
	case config.EventsSinkRedis:
		if rt.Redis == nil {
			return errors.New("EVENTS_SINK=redis requires a reachable REDIS_URL")
		}
		rt.Events = events.NewRedisPublisher(notifications.NewNotifier(rt.Redis))
	default:
		rt.Events = events.Noop{}
	}
	return nil
}

// Close releases the event writer, Redis and database connections.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.kafka != nil {
		errs = append(errs, rt.kafka.Close())
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
