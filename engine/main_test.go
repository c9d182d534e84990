// api/engine/main_test.go
package engine_test

import (
	"os"
	"testing"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "sift-test-logs")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)

	code := m.Run()

	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}
