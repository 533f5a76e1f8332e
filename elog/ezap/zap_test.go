// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ezap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLogger(zap.New(core)).WithName("render")

	log.Info("frame", "n", 1)
	log.V(1).Info("detail")
	log.Error(errors.New("device lost"), "render pass failed")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("recorded %d entries, want 3", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.DebugLevel, zapcore.ErrorLevel}
	wantMessages := []string{"frame", "detail", "render pass failed"}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level %v, want %v", i, e.Level, wantLevels[i])
		}
		if e.Message != wantMessages[i] {
			t.Errorf("entry %d message %q, want %q", i, e.Message, wantMessages[i])
		}
		if got, want := e.LoggerName, "render"; got != want {
			t.Errorf("entry %d logger %q, want %q", i, got, want)
		}
	}

	want := map[string]interface{}{"n": int64(1)}
	if diff := cmp.Diff(want, entries[0].ContextMap()); diff != "" {
		t.Errorf("info fields mismatch (-want, +got):\n%s", diff)
	}
}

func TestEnabledFollowsZapLevel(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	log := NewLogger(zap.New(core))

	if !log.GetSink().Enabled(0) {
		t.Error("Enabled(0) false with info-level core")
	}
	if log.GetSink().Enabled(1) {
		t.Error("Enabled(1) true with info-level core")
	}
}
