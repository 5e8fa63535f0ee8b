// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/vitalflow/vitalflow/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
