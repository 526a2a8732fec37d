package devserver

import (
	"context"
	"testing"
	"time"
)

func TestParseCleanupSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"default on empty", "", false},
		{"every 15 minutes", "*/15 * * * *", false},
		{"hourly", "0 * * * *", false},
		{"timezone prefix rejected", "CRON_TZ=America/New_York 0 * * * *", true},
		{"garbage rejected", "every day", true},
		{"six fields rejected", "0 0 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCleanupSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionCleaner_RunOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = store.CreateSession(ctx, Session{ID: "s1", UserID: "u1", Token: "dead", ExpiresAt: now.Add(-time.Minute), CreatedAt: now})
	_ = store.CreateSession(ctx, Session{ID: "s2", UserID: "u1", Token: "live", ExpiresAt: now.Add(time.Hour), CreatedAt: now})

	cleaner, err := NewSessionCleaner(SessionCleanerConfig{Store: store})
	if err != nil {
		t.Fatalf("creating cleaner: %v", err)
	}

	cleaner.RunOnce(ctx)

	if _, ok, _ := store.GetSessionByToken(ctx, "dead"); ok {
		t.Error("expired session survived")
	}
	if _, ok, _ := store.GetSessionByToken(ctx, "live"); !ok {
		t.Error("live session was removed")
	}
}

func TestSessionCleaner_StartStop(t *testing.T) {
	cleaner, err := NewSessionCleaner(SessionCleanerConfig{Store: newTestStore(t)})
	if err != nil {
		t.Fatalf("creating cleaner: %v", err)
	}

	cleaner.Start()
	// Second Start is a no-op, not a second loop.
	cleaner.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cleaner.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Stopping a stopped cleaner is fine.
	if err := cleaner.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
