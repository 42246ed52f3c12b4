// apicentric serves mock APIs from declarative service definitions and
// records live traffic into new ones.
package main

import (
	"fmt"
	"os"

	"github.com/pmaojo/apicentric-sub001/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
