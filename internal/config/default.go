package config

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// Configuration keys.
const (
	KeyLanguage      = "lang"
	KeyHTTPTimeout   = "http.timeout"
	KeyHTTPRetries   = "http.retries"
	KeyHTTPUserAgent = "http.user_agent"
	KeyHTTPProxy     = "http.proxy"
	KeyServerAddr    = "server.addr"
	KeyCacheDir      = "cache.dir"
	KeyCacheTTL      = "cache.ttl"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogOutput     = "log.output"
	KeyLogComponents = "log.components"
	KeyLogCaller     = "log.caller"
	KeyLogTimestamp  = "log.timestamp"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable name for this field.
func (f Field) Env() string {
	return strings.ToUpper(EnvPrefix + "_" + EnvKeyReplacer.Replace(f.Key))
}

var fields = []Field{
	{KeyLanguage, "en", "Language sent upstream as the hl parameter"},
	{KeyHTTPTimeout, 30 * time.Second, "Timeout of one upstream request"},
	{KeyHTTPRetries, 2, "Total attempts per upstream request"},
	{KeyHTTPUserAgent, "", "User-Agent override, empty for the built-in one"},
	{KeyHTTPProxy, "", "Proxy URL for upstream requests"},
	{KeyServerAddr, ":8080", "Listen address of the HTTP server"},
	{KeyCacheDir, "", "Directory keeping downloaded player scripts, empty to disable"},
	{KeyCacheTTL, 24 * time.Hour, "How long a stored player script is reused"},
	{KeyLogLevel, "INFO", "Log level: TRACE, DEBUG, INFO, WARN or ERROR"},
	{KeyLogFormat, "text", "Log format: text, json or color"},
	{KeyLogOutput, "stderr", "Log output: stderr, stdout, null or file:<path>"},
	{KeyLogComponents, "app,server", "Comma separated components to log, or all"},
	{KeyLogCaller, false, "Include the caller location in log lines"},
	{KeyLogTimestamp, true, "Include timestamps in log lines"},
}

// Default holds every known field by key.
var Default = lo.SliceToMap(fields, func(f Field) (string, Field) {
	return f.Key, f
})

// Fields returns the known fields in declaration order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}
