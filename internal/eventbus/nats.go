// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

//go:build nats

package eventbus

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
)

const (
	reconnectWait   = 2 * time.Second
	ackWaitTimeout  = 30 * time.Second
	closeTimeout    = 30 * time.Second
	serverReadyWait = 10 * time.Second
	maxPayload      = 1 << 20
)

// openNATS connects a core NATS publisher and subscriber, starting an
// embedded server first when configured. JetStream is not used: the
// mirror and ingest feeds are best effort.
//
//nolint:gocritic // Config is small and copied once at startup
func openNATS(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	b := &Bus{Backend: BackendNATS}

	url := cfg.URL
	if cfg.Embedded {
		srv, err := StartEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		url = srv.ClientURL()
		b.closers = append(b.closers, func() error {
			srv.Shutdown()
			srv.WaitForShutdown()
			return nil
		})
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("buzzstream"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(reconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	b.Publisher = pub
	b.closers = append(b.closers, pub.Close)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   ackWaitTimeout,
		CloseTimeout:     closeTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	b.Subscriber = sub
	b.closers = append(b.closers, sub.Close)

	return b, nil
}

// StartEmbeddedServer starts an in-process NATS server and waits until it
// accepts connections. Port -1 picks a random free port.
func StartEmbeddedServer(host string, port int) (*server.Server, error) {
	if host == "" {
		host = "127.0.0.1"
	}
	ns, err := server.NewServer(&server.Options{
		ServerName: "buzzstream",
		Host:       host,
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: maxPayload,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(serverReadyWait) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within %s", serverReadyWait)
	}
	return ns, nil
}
