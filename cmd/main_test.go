package cmd

import (
	"io"
	"os"
	"testing"

	"bsprep/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.InitForCLI(logging.LevelDebug, io.Discard)
	os.Exit(m.Run())
}
