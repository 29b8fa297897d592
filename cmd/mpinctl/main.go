// Command mpinctl evaluates MPINs from the command line with the same rules
// as the HTTP service.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := buildRootCommand()
	if err := root.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
