package syslog

import (
	"time"
)

// NewLineFormatter decorates messages the way a generic logging handler
// would: timestamp, level name, message. The RFC 3339 timestamp layout is
// opt-in; the default is the traditional syslog Stamp layout.
func NewLineFormatter(rfc3339 bool) Formatter {
	layout := time.Stamp
	if rfc3339 {
		layout = time.RFC3339
	}
	return FormatterFunc(func(level string, message string) string {
		return time.Now().Format(layout) + " " + level + " " + message
	})
}

// RawFormatter passes messages through undecorated.
func RawFormatter() Formatter {
	return FormatterFunc(func(level string, message string) string {
		return message
	})
}
