// SPDX-License-Identifier: MIT

// Command spchol factorizes a generated sparse SPD model problem with the
// supernodal Cholesky solver, solves for random right-hand sides and reports
// timings and the residual.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
