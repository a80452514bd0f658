// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, integration, cover).
type Test mg.Namespace

// All runs all tests (unit and integration).
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs only unit tests, excluding the tests/ directory. Pass --run
// to select tests by name.
func (Test) Unit() error {
	fs := flag.NewFlagSet("test:unit", flag.ContinueOnError)
	run := fs.String("run", "", "only run tests matching this regular expression")
	parseTargetFlags(fs)

	unitPkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := []string{"test", "-v"}
	if *run != "" {
		args = append(args, "-run", *run)
	}
	args = append(args, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Integration builds first, then runs only integration tests.
func (Test) Integration() error {
	if _, err := os.Stat("tests"); os.IsNotExist(err) {
		fmt.Println("No integration test directory found (tests/).")
		return nil
	}
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "-v", "./tests/...")
}

// Cover runs the unit tests with a coverage profile written to bin/.
func (Test) Cover() error {
	unitPkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	args := append([]string{"test", "-coverprofile", profile}, unitPkgs...)
	if err := sh.RunV(binGo, args...); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// unitPackages lists the module packages outside tests/.
func unitPackages() ([]string, error) {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !strings.Contains(pkg, "/tests/") && !strings.HasSuffix(pkg, "/tests") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	return unitPkgs, nil
}
