// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/chatsniff/pkg/plugin"
	"firestige.xyz/chatsniff/plugins/reporter/console"
	"firestige.xyz/chatsniff/plugins/reporter/kafka"
)

func init() {
	plugin.RegisterReporter("console", console.NewConsoleReporter)
	plugin.RegisterReporter("kafka", kafka.NewKafkaReporter)
}
