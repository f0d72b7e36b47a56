/*
main.go

macsvc: launchd service management for macOS.
*/
package main

import (
	"context"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/cmd"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback("")

	if err := telemetry.Init("macsvc"); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}

	code := cmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = telemetry.Shutdown(ctx)
	cancel()
	os.Exit(code)
}
