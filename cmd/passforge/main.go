// Package main provides the passforge CLI.
//
// passforge generates passwords under a configurable policy and scores
// their strength.
//
// Usage:
//
//	passforge generate [-l 24] [--mode segmented]
//	passforge score [password]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
