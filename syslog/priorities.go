/*
Copyright (c) 2013 Paul Morton, Papertrail, Inc., & Paul Hammond

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package syslog

import (
	"fmt"
)

// A Severity is the urgency of a message, a Facility the category of the
// subsystem that produced it. A Priority packs both into the single integer
// carried in the "<N>" message header.
type Severity int

type Facility int

type Priority int

// Returned when looking up a non-existant facility or severity
var ErrPriority = fmt.Errorf("Not a designated priority")

// RFC3164 Severities
const (
	SevEmerg Severity = iota
	SevAlert
	SevCrit
	SevErr
	SevWarning
	SevNotice
	SevInfo
	SevDebug
)

var severities = map[string]Severity{
	"emerg":    SevEmerg,
	"panic":    SevEmerg, // deprecated alias
	"alert":    SevAlert,
	"crit":     SevCrit,
	"critical": SevCrit,
	"err":      SevErr,
	"error":    SevErr,     // deprecated alias
	"warn":     SevWarning, // deprecated alias
	"warning":  SevWarning,
	"notice":   SevNotice,
	"info":     SevInfo,
	"debug":    SevDebug,
}

// RFC3164 Facilities
const (
	LogKern Facility = iota
	LogUser
	LogMail
	LogDaemon
	LogAuth
	LogSyslog
	LogLPR
	LogNews
	LogUUCP
	LogCron
	LogAuthPriv
	LogFTP
	LogNTP
	LogAudit
	LogAlert
	LogAt
	LogLocal0
	LogLocal1
	LogLocal2
	LogLocal3
	LogLocal4
	LogLocal5
	LogLocal6
	LogLocal7
)

var facilities = map[string]Facility{
	"kern":     LogKern,
	"user":     LogUser,
	"mail":     LogMail,
	"daemon":   LogDaemon,
	"auth":     LogAuth,
	"security": LogAuth, // deprecated alias
	"syslog":   LogSyslog,
	"lpr":      LogLPR,
	"news":     LogNews,
	"uucp":     LogUUCP,
	"cron":     LogCron,
	"authpriv": LogAuthPriv,
	"ftp":      LogFTP,
	"ntp":      LogNTP,
	"audit":    LogAudit,
	"alert":    LogAlert,
	"at":       LogAt,
	"local0":   LogLocal0,
	"local1":   LogLocal1,
	"local2":   LogLocal2,
	"local3":   LogLocal3,
	"local4":   LogLocal4,
	"local5":   LogLocal5,
	"local6":   LogLocal6,
	"local7":   LogLocal7,
}

// The map below appears to be trivially lowercasing the key. However,
// there's more to it than meets the eye - in some locales, lowercasing
// gives unexpected results, so the mapping must stay a fixed table.
var levelNames = map[string]string{
	"DEBUG":    "debug",
	"INFO":     "info",
	"WARNING":  "warning",
	"ERROR":    "error",
	"CRITICAL": "critical",
}

// LookupSeverity returns the named severity. It returns ErrPriority if the
// severity does not exist.
func LookupSeverity(name string) (Severity, error) {
	s, ok := severities[name]
	if !ok {
		return 0, ErrPriority
	}
	return s, nil
}

// LookupFacility returns the named facility. It returns ErrPriority if the
// facility does not exist.
func LookupFacility(name string) (Facility, error) {
	f, ok := facilities[name]
	if !ok {
		return 0, ErrPriority
	}
	return f, nil
}

// MapLevel maps a log-level name from a generic logging front end to a
// severity keyword. Levels outside the table map to "warning"; MapLevel
// never fails.
func MapLevel(levelName string) string {
	keyword, ok := levelNames[levelName]
	if !ok {
		return "warning"
	}
	return keyword
}

// A Code identifies a facility or severity either by its raw integer value
// or by its syslog keyword.
type Code struct {
	name  string
	value int
	named bool
}

// Numeric returns a Code holding an already-resolved integer value.
func Numeric(value int) Code {
	return Code{value: value}
}

// Named returns a Code holding a keyword to be resolved against the
// facility or severity tables.
func Named(name string) Code {
	return Code{name: name, named: true}
}

func (c Code) resolveFacility() (Facility, error) {
	if !c.named {
		return Facility(c.value), nil
	}
	f, err := LookupFacility(c.name)
	if err != nil {
		return 0, fmt.Errorf("facility %q: %w", c.name, err)
	}
	return f, nil
}

func (c Code) resolveSeverity() (Severity, error) {
	if !c.named {
		return Severity(c.value), nil
	}
	s, err := LookupSeverity(c.name)
	if err != nil {
		return 0, fmt.Errorf("severity %q: %w", c.name, err)
	}
	return s, nil
}

// EncodePriority combines a facility and a severity into the priority value
// carried in the message header. Keyword Codes are resolved through the
// facility and severity tables; an unknown keyword fails with ErrPriority.
func EncodePriority(facility, severity Code) (Priority, error) {
	f, err := facility.resolveFacility()
	if err != nil {
		return 0, err
	}
	s, err := severity.resolveSeverity()
	if err != nil {
		return 0, err
	}
	return Priority(int(f)<<3 | int(s)), nil
}

// Facility returns the facility encoded in p.
func (p Priority) Facility() Facility {
	return Facility(p >> 3)
}

// Severity returns the severity encoded in p.
func (p Priority) Severity() Severity {
	return Severity(p & 7)
}
