// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/magefile/mage/sh"

const binLint = "golangci-lint"

// Lint runs go vet, then golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "--timeout", "5m", "./...")
}
