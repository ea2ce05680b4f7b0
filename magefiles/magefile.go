// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the compass project using Mage.
//
// Usage:
//
//	mage build             Compile compass binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude tests/)
//	mage test:integration  Run only integration tests (builds first)
//	mage test:cover        Run unit tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install compass to GOPATH/bin
//	mage stats             Print Go LOC per package and doc word counts
package main

const (
	binGo      = "go"
	binaryName = "compass"
	binaryDir  = "bin"
	cmdDir     = "./cmd/compass"
	modulePath = "github.com/mesh-intelligence/compass"
)
