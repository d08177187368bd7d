//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "logincheck"

// Default target builds the binary.
var Default = Build

// Build builds logincheck with the git revision baked in.
func Build() error {
	rev, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		rev = "unknown"
	}
	ldflags := fmt.Sprintf("-s -w -X main.revision=%s", strings.TrimSpace(rev))
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binary, "./cmd/logincheck")
}

// Clean removes build artifacts and progress logs.
func Clean() error {
	if err := sh.Rm(binary); err != nil {
		return err
	}
	files, err := os.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "progress") && strings.HasSuffix(f.Name(), ".txt") {
			if err := sh.Rm(f.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Test namespace for test commands
type Test mg.Namespace

// Unit runs unit tests with the race detector.
func (Test) Unit() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Coverage writes coverage.out for unit tests.
func (Test) Coverage() error {
	return sh.RunV("go", "test", "-count=1", "-coverprofile=coverage.out", "./...")
}

// E2E runs the live-site suite. set E2E_HEADLESS=false to watch the browser.
func (Test) E2E() error {
	return sh.RunV("go", "test", "-tags=e2e", "-count=1", "-timeout=15m", "./e2e/...")
}

// Lint runs golangci-lint.
func Lint() error {
	mg.Deps(Mocks)
	return sh.RunV("golangci-lint", "run", "./...")
}

// Mocks regenerates moq mocks.
func Mocks() error {
	return sh.RunV("go", "generate", "./pkg/login/...")
}
