// Command pm is the vault's command-line frontend: a cobra command tree
// wired through viper for flag/env/config-file binding, with a single
// prompt-for-master-password-then-act flow per invocation.
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
