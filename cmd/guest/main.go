// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command guest is a single-shot entrypoint: read the full ABI-encoded
// request from stdin, compute a reallocation plan, and write the
// ABI-encoded journal to stdout. There is no other I/O and no persistent
// state — this mirrors the read-once/commit-once contract a zkVM guest
// program runs under, so the same binary can be wrapped by a prover host
// without modification.
package main

import (
	"errors"
	"io"
	"os"

	log "github.com/luxfi/log"
	"github.com/zeebo/blake3"

	"github.com/luxfi/optimal-allocation/allocation"
)

var logger = log.NewTestLogger(log.InfoLevel)

func main() {
	logger.Info("guest starting")

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("failed to read stdin", "error", err)
		os.Exit(1)
	}

	// A short content hash correlates a run's input with its journal in
	// logs without echoing the (potentially large) payload itself.
	digest := blake3.Sum256(input)
	logger.Info("request received", "bytes", len(input), "digest", digest[:8])

	journal, err := allocation.Run(input)
	if err != nil {
		var fault *allocation.Fault
		if errors.As(err, &fault) {
			logger.Error("run failed", "kind", fault.Kind.String(), "op", fault.Op, "cause", fault.Err)
		} else {
			logger.Error("run failed", "error", err)
		}
		os.Exit(1)
	}

	if _, err := os.Stdout.Write(journal); err != nil {
		logger.Error("failed to write journal", "error", err)
		os.Exit(1)
	}

	logger.Info("journal committed", "bytes", len(journal))
}
