package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		opts      Options
		wantErr   bool
		wantDebug bool
	}{
		{name: "prod", env: "prod"},
		{name: "local", env: "local", wantDebug: true},
		{name: "docker json", env: "docker", opts: Options{Encoding: "json"}, wantDebug: true},
		{name: "level override", env: "prod", opts: Options{Level: "debug"}, wantDebug: true},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "prod", opts: Options{Level: "loud"}, wantErr: true},
		{name: "bad encoding", env: "prod", opts: Options{Encoding: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("collection", "users"))
	ctx = With(ctx, zap.String("subject", "svc-a"))
	if With(ctx) != ctx {
		t.Error("With without fields should return ctx unchanged")
	}
	FromContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["collection"] != "users" || fields["subject"] != "svc-a" {
		t.Errorf("fields = %v", fields)
	}
}
