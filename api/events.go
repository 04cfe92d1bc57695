package api

import (
	"time"
)

/*
	Monitoring configuration structs, and message types used.
*/
type (
	/*
		Slot for the channel the caller wishes log events to be sent to.

		A nil channel disables all logging.
		Sends are blocking: whoever supplies the channel must keep
		draining it for as long as the operations it was given to run.
		Nothing in this module will close the channel; its owner does that.
	*/
	Monitor struct {
		Chan chan<- Event
	}

	/*
		A "union" type of all the kinds of event that may be generated.

		The "Result" message is never sent to Monitor.Chan --
		its values are converted into the function returns --
		but *is* seen in the serial form emitted by the command line.
	*/
	Event struct {
		Log    *Event_Log    `refmt:"log,omitempty"`
		Result *Event_Result `refmt:"result,omitempty"`
	}

	Event_Log struct {
		Time   time.Time   `refmt:"t"`
		Level  LogLevel    `refmt:"lvl"`
		Msg    string      `refmt:"msg"`
		Detail [][2]string `refmt:"detail,omitempty"`
	}

	Event_Result struct {
		Path   string   `refmt:"path,omitempty"`
		Values []string `refmt:"values,omitempty"`
		Error  *Error   `refmt:"error,omitempty"`
	}
)

type LogLevel int8

const (
	LogError = LogLevel(4)
	LogWarn  = LogLevel(3)
	LogInfo  = LogLevel(2)
	LogDebug = LogLevel(1)
)

func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "error"
	case LogWarn:
		return "warn"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	default:
		return "unknown"
	}
}

func (r *Event_Result) SetError(err error) {
	r.Error = ToError(err)
}
