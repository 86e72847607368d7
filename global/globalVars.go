/*
Package global holds process-wide state shared across the application.
Only the loaded configuration lives here; every export run is otherwise
stateless and keeps its working data local to the run.
*/
package global

import (
	"bridge_cao/config"
)

// GlobalConfig is the application configuration, loaded once at startup
// from environment variables or the .env file.
var GlobalConfig *config.Configuration
