// Package main provides build targets for the karte project using Mage.
//
// Usage:
//
//	mage build                 Compile karte binary to bin/
//	mage build --version 1.2.0 Compile with a release version
//	mage test:all              Run all tests (unit + integration)
//	mage test:unit             Run only unit tests (exclude integration)
//	mage test:unit --run Search Run unit tests matching a pattern
//	mage test:integration      Run only integration tests (builds first)
//	mage test:cover            Write a coverage profile to bin/
//	mage lint                  Run golangci-lint
//	mage vet                   Run go vet
//	mage serve                 Run the browser UI from source
//	mage clean                 Remove build artifacts
//	mage install               Install karte to GOPATH/bin
//	mage stats                 Print Go LOC and documentation word counts
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Stats prints Go lines of code and documentation word counts.
func Stats() error {
	var prodLines, testLines int

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == "vendor" || path == ".git" || path == binaryDir || path == "_examples" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasPrefix(path, "magefiles") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	docWords := 0
	for _, pattern := range []string{"*.md", "docs/*.md"} {
		words, err := countWordsInGlob(pattern)
		if err != nil {
			return err
		}
		docWords += words
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of code (Go, total):      %d\n", prodLines+testLines)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInGlob(pattern string) (int, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		inWord := false
		for _, r := range string(data) {
			if unicode.IsSpace(r) {
				inWord = false
			} else if !inWord {
				inWord = true
				total++
			}
		}
	}
	return total, nil
}
