// Package autoload initializes the global logger from LOG_* env vars on import.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/tanpawarit/shopdesk-agent/pkg/logger"
)

func init() {
	conf := *logx.DefaultConfig
	// Flags are not parsed yet at init time, so the .env loader is skipped here.
	_ = envconfig.Process("LOG", &conf)
	logx.Init(conf)
}
