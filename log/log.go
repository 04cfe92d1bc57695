/*
	Helper functions for emitting structured logs to the api.Monitor.

	These functions encompass the lifecycle events of artifacts,
	and using them A) saves typing and B) keeps the common stuff formatted
	in a common way between the materializer and the session.
	Anything can of course also write its own log events raw; it is freetext.
*/
package log

import (
	"fmt"
	"time"

	"github.com/Avishs-nd/MuskCult/api"
)

func emit(mon api.Monitor, level api.LogLevel, msg string, detail ...[2]string) {
	if mon.Chan == nil {
		return
	}
	mon.Chan <- api.Event{
		Log: &api.Event_Log{
			Time:   time.Now(),
			Level:  level,
			Msg:    msg,
			Detail: detail,
		},
	}
}

func ArtifactCreated(mon api.Monitor, art api.FileArtifact) {
	emit(mon, api.LogInfo, fmt.Sprintf("file %s from revision %s saved to %s", art.Source, art.Revision.Short(8), art.Path),
		[2]string{"revision", string(art.Revision)},
		[2]string{"source", art.Source},
		[2]string{"path", art.Path},
	)
}

func UnitLoaded(mon api.Monitor, art api.UnitArtifact) {
	emit(mon, api.LogInfo, fmt.Sprintf("loaded unit %s from revision %s", art.UnitName, art.File.Revision.Short(8)),
		[2]string{"unit", art.UnitName},
		[2]string{"revision", string(art.File.Revision)},
		[2]string{"source", art.File.Source},
		[2]string{"path", art.File.Path},
	)
}

// Typically called with an 'api.ErrRevisionNotFound', 'api.ErrPathNotFound', or 'api.ErrBackendUnavailable'.
func ReadFailed(mon api.Monitor, err error, rev api.RevisionID, source string) {
	emit(mon, api.LogError, fmt.Sprintf("error reading %s at revision %s: %s", source, rev, err),
		[2]string{"revision", string(rev)},
		[2]string{"source", source},
		[2]string{"error", err.Error()},
	)
}

func WriteFailed(mon api.Monitor, err error, path string) {
	emit(mon, api.LogError, fmt.Sprintf("error writing %s: %s", path, err),
		[2]string{"path", path},
		[2]string{"error", err.Error()},
	)
}

func LoadFailed(mon api.Monitor, err error, unitName string, path string) {
	emit(mon, api.LogError, fmt.Sprintf("error loading unit %s from %s: %s", unitName, path, err),
		[2]string{"unit", unitName},
		[2]string{"path", path},
		[2]string{"error", err.Error()},
	)
}

func ArtifactReleased(mon api.Monitor, art api.Artifact) {
	emit(mon, api.LogDebug, fmt.Sprintf("released %s", art),
		[2]string{"id", art.ID()},
	)
}

// Release failures are logged and then suppressed, so this is a warning rather than an error.
func ReleaseFailed(mon api.Monitor, err error, art api.Artifact) {
	emit(mon, api.LogWarn, fmt.Sprintf("error releasing %s: %s", art, err),
		[2]string{"id", art.ID()},
		[2]string{"error", err.Error()},
	)
}

// A close that failed while another error was already being returned.
func TeardownFailed(mon api.Monitor, err error, original error) {
	emit(mon, api.LogError, fmt.Sprintf("error closing session after failure: %s", err),
		[2]string{"error", err.Error()},
		[2]string{"original", original.Error()},
	)
}

// Output of the loaded code's own print statements.
func UnitPrint(mon api.Monitor, unitName string, msg string) {
	emit(mon, api.LogInfo, msg,
		[2]string{"unit", unitName},
	)
}

// Reports what a symbolic revision like "HEAD" meant at the time it was used.
func RevisionResolved(mon api.Monitor, rev api.RevisionID, hash string) {
	emit(mon, api.LogInfo, fmt.Sprintf("revision %s is %s", rev, hash),
		[2]string{"revision", string(rev)},
		[2]string{"hash", hash},
	)
}
