// Command mpxgen is an FM multiplex encoder. It plays stereo baseband on
// the default audio device or writes it to a file.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
