// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/cargotally/cargotally/cmd/cargotally"

func main() {
	cmd.Execute()
}
