// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// ldflags stamps the version from COMPASS_VERSION, or the nearest git tag.
func ldflags() string {
	version := os.Getenv("COMPASS_VERSION")
	if version == "" {
		if tag, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil {
			version = strings.TrimPrefix(tag, "v")
		}
	}
	if version == "" {
		return ""
	}
	return "-X " + modulePath + "/pkg/compass.Version=" + version
}

// Build compiles the compass binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	if err := sh.Copy(dst, src); err != nil {
		return err
	}
	return os.Chmod(dst, 0o755)
}
