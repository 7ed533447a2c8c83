// Command fatinspect prints the layout of the root directory of a FAT32 image.
package main

import (
	"os"

	"github.com/aligator/fatinspect/internal/logger"
)

func main() {
	if err := createRootCommand().Execute(); err != nil {
		logger.Logger().Sync()
		os.Exit(1)
	}
}
