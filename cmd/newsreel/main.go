// Command newsreel builds the daily news briefing: script, subtitles and video.
package main

import (
	"os"
	_ "time/tzdata"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
