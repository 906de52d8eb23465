package main

import "teatroqr/cmd/teatroqr/cmd"

// @title Teatro QR API
// @version 1.0
// @description Works, attendee registration with emailed QR codes, and one-shot door validation.
// @BasePath /
func main() {
	cmd.Execute()
}
