// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "karte"
	binaryDir  = "bin"
	cmdDir     = "./cmd/karte"

	versionVar = "github.com/mesh-intelligence/karte/internal/cli.Version"
)

// Build compiles the karte binary to bin/. Pass --version to stamp a
// release version into the binary.
func Build() error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	version := fs.String("version", "", "release version stamped into the binary")
	parseTargetFlags(fs)

	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v"}
	if *version != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+*version)
	}
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
}

// Serve runs the browser UI from source.
func Serve() error {
	return sh.RunV(binGo, "run", cmdDir, "serve")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
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
	return sh.Copy(dst, src)
}
