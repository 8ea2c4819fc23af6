// Command panelctl builds dashboard panels from query results and renders,
// inspects or serves them.
package main

import (
	"os"
)

func main() {
	if err := execute(newRootCmd(), os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
