// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/risk"
	"github.com/tomtom215/cybersentinel/internal/session"
	"github.com/tomtom215/cybersentinel/internal/supervisor/services"
	ws "github.com/tomtom215/cybersentinel/internal/websocket"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	sessions []string
}

func (b *recordingBroadcaster) SendToSession(sessionID, _ string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = append(b.sessions, sessionID)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// TestSupervisedEngineComponents runs the real sweeper, hub and publisher
// under the tree.
func TestSupervisedEngineComponents(t *testing.T) {
	manager := session.NewManager(session.Config{
		IdleTimeout:   50 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
		MaxSessions:   10,
	}, risk.DefaultPolicy(), eventlog.NewMemoryLog(10))

	broadcaster := &recordingBroadcaster{}
	publisher := session.NewPublisher(manager, 10*time.Millisecond, broadcaster, nil)
	hub := ws.NewHub()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	tree.AddEngineService(services.NewSessionSweeperService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewRiskPublisherService(publisher))

	s, err := manager.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Engine().SetFlag(risk.FlagBadHeaders, true); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for broadcaster.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("publisher never pushed a risk update")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for manager.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle session was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
}
