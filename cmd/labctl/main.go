// Command labctl runs maintenance and one-off document jobs against the lab
// database.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("labctl failed")
		os.Exit(1)
	}
}
