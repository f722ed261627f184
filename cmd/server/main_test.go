package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gocommission/internal/infrastructure/config"
	"github.com/iho/gocommission/internal/infrastructure/eventpublisher"
)

func TestNewPublisherDefaultsToLog(t *testing.T) {
	p, err := newPublisher(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := p.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected LogPublisher, got %T", p)
	}
}

func TestNewPublisherUsesKafkaWhenBrokersSet(t *testing.T) {
	p, err := newPublisher(&config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "commission-events",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kp, ok := p.(*eventpublisher.KafkaPublisher)
	if !ok {
		t.Fatalf("expected KafkaPublisher, got %T", p)
	}
	_ = kp.Close()
}

func TestNewPublisherRejectsMissingTopic(t *testing.T) {
	if _, err := newPublisher(&config.Config{KafkaBrokers: []string{"localhost:9092"}}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for empty topic")
	}
}

func TestRedisPinger(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	pinger := redisPinger(client)
	if err := pinger.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}

	mr.Close()
	if err := pinger.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail after redis stops")
	}
}
