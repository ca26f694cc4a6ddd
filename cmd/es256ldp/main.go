/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command es256ldp signs and verifies JSON-LD documents with ES256 linked data proofs.
package main

import (
	"os"

	"github.com/cfries/es256signature2020/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
