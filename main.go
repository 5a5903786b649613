package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpservice/internal/app"
)

// @title           OTP Service API
// @version         1.0
// @description     OTP Service provisions TOTP secrets per user and verifies one-time codes.
// @server          http://localhost:8080
// @securityDefinitions.basic  BasicAuth
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
