// Command zxscan decodes barcodes in image files or over HTTP.
package main

import (
	"os"

	"github.com/ericlevine/zxpipe/cmd/zxscan/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
