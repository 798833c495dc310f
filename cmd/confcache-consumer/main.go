/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// confcache-consumer subscribes to configuration change-event channels
// and logs every event it sees. It is the operational counterpart to
// the cache synchronization service: point it at the same redis and it
// shows the stream of monitor/network/trigger changes the execution
// engine consumes.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/blip0/confcache/pkg/cache/redis"
	"github.com/blip0/confcache/pkg/config"
	"github.com/blip0/confcache/pkg/events"
	"github.com/blip0/confcache/pkg/logger"
	"github.com/blip0/confcache/pkg/utils"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory containing appconfig.yaml")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Logger(ctx)

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	logger.SetLevel(cfg.App.LogLevel)

	cacheClient, err := redis.NewCache(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer func() {
		if err := cacheClient.Disconnect(); err != nil {
			log.WithError(err).Warn("error disconnecting from redis")
		}
	}()

	consumer := events.NewConsumer(cacheClient)
	consumer.Handle(events.ChannelPlatformUpdate, logEvent)
	consumer.Handle(events.ChannelConfigUpdate, logEvent)
	for _, tenantID := range cfg.Consumer.Tenants {
		consumer.Handle(events.TenantChannel(tenantID), logEvent)
	}

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("event consumer stopped")
	}
	log.Info("event consumer shut down")
}

// changeSummary is the subset of event metadata worth surfacing on the
// console.
type changeSummary struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Active         bool   `json:"active"`
	Paused         bool   `json:"paused"`
	EntriesDeleted int64  `json:"entries_deleted"`
}

func logEvent(ctx context.Context, ev events.Event) {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"event_type":    ev.EventType,
		"resource_type": ev.ResourceType,
		"resource_id":   ev.ResourceID,
		"tenant_id":     ev.TenantID,
		"timestamp":     ev.Timestamp,
	})

	if len(ev.Metadata) > 0 {
		var summary changeSummary
		if err := utils.MapToStruct(ev.Metadata, &summary); err == nil {
			log = log.WithFields(logrus.Fields{
				"name":   summary.Name,
				"slug":   summary.Slug,
				"active": summary.Active,
			})
			if ev.EventType == events.EventInvalidate {
				log = log.WithField("entries_deleted", summary.EntriesDeleted)
			}
		}
	}

	log.Info("configuration change observed")
}
