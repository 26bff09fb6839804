// Package main provides build targets for keeper using Mage.
//
// Usage:
//
//	mage build             Compile keeper binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude tests/)
//	mage test:integration  Run only integration tests (builds first)
//	mage test:cover        Run unit tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install keeper to GOPATH/bin
package main
