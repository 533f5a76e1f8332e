// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !darwin
// +build !darwin

package driver

import (
	"fmt"
	"runtime"

	"github.com/itsManjeet/anvil/adapter"
)

func main(cfg Config, f func(adapter.AppAdapter)) error {
	return fmt.Errorf("driver: unsupported GOOS/GOARCH %s/%s", runtime.GOOS, runtime.GOARCH)
}
