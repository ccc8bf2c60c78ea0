package server

var (
	// Version of executable
	Version = "0.1.0"

	// Commit of executable
	Commit = "HEAD"
)
