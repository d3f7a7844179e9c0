// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sage wires the tree reader, configuration, module registry,
// and Forest Driver into a runnable binary, grounded on the teacher's
// cobra-based CLI entry point (cmd/consensus/main.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Sage semi-analytic galaxy formation engine",
	Long: `Sage walks dark-matter merger trees and evolves galaxies within each
forest through a pluggable pipeline of baryonic physics modules.`,
}

func main() {
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sage:", err)
		os.Exit(1)
	}
}
