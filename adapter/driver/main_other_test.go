// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !darwin
// +build !darwin

package driver

import (
	"runtime"
	"strings"
	"testing"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
)

func TestMainUnsupportedPlatform(t *testing.T) {
	called := false
	err := Main(Config{
		Title: "test",
		NewRenderer: func() (appledriver.Renderer, error) {
			t.Fatal("NewRenderer called on unsupported platform")
			return nil, nil
		},
	}, func(adapter.AppAdapter) {
		called = true
	})
	if err == nil {
		t.Fatal("Main returned nil error on unsupported platform")
	}
	if !strings.Contains(err.Error(), runtime.GOOS) {
		t.Errorf("error %q does not name GOOS %q", err, runtime.GOOS)
	}
	if called {
		t.Error("f was called despite unsupported platform")
	}
}
