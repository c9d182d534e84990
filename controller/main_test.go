// api/controller/main_test.go
package controller_test

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

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
