/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/events"
)

func TestNATSMessageRoundTrip(t *testing.T) {
	data, err := marshalNATSMessage(events.EventPlanGenerated, events.Payload{"plan_id": "abc"}, "node-1")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := unmarshalNATSMessage(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.EventType != events.EventPlanGenerated || msg.NodeID != "node-1" || msg.Payload["plan_id"] != "abc" || msg.MessageID == "" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if _, err := unmarshalNATSMessage([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for message without event type")
	}
}

func TestReceiveSkipsOwnNode(t *testing.T) {
	local := events.NewBus()
	sub := local.Subscribe(events.EventSweepRunDone)
	nb := &NATSBus{local: local, prefix: "matchday.events", nodeID: "me", logger: zerolog.Nop()}

	own, _ := marshalNATSMessage(events.EventSweepRunDone, events.Payload{"from": "me"}, "me")
	nb.receive(&nats.Msg{Subject: "matchday.events.sweep.run.done", Data: own})
	select {
	case p := <-sub:
		t.Fatalf("own event delivered again: %v", p)
	default:
	}

	remote, _ := marshalNATSMessage(events.EventSweepRunDone, events.Payload{"from": "them"}, "them")
	nb.receive(&nats.Msg{Subject: "matchday.events.sweep.run.done", Data: remote})
	select {
	case p := <-sub:
		if p["from"] != "them" {
			t.Fatalf("unexpected payload %v", p)
		}
	default:
		t.Fatal("remote event not delivered")
	}
}

func TestNewNATSBusFailsWithoutServer(t *testing.T) {
	cfg := DefaultNATSConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.Timeout = 200 * time.Millisecond
	if _, err := NewNATSBus(cfg, events.NewBus(), zerolog.Nop()); err == nil {
		t.Fatal("expected connection error")
	}
}
