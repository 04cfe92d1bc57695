package api

import (
	"time"

	"github.com/polydawn/refmt/obj/atlas"
)

var Atlas = atlas.MustBuild(
	atlas.BuildEntry(Event{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(Event_Log{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(Event_Result{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(Error{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(FileArtifact{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(UnitArtifact{}).StructMap().Autogenerate().Complete(),
	Time_AtlasEntry,
)

// Times are serialized as RFC3339 strings (with nanoseconds, in UTC).
var Time_AtlasEntry = atlas.BuildEntry(time.Time{}).Transform().
	TransformMarshal(atlas.MakeMarshalTransformFunc(
		func(x time.Time) (string, error) {
			return x.UTC().Format(time.RFC3339Nano), nil
		})).
	TransformUnmarshal(atlas.MakeUnmarshalTransformFunc(
		func(x string) (time.Time, error) {
			return time.Parse(time.RFC3339Nano, x)
		})).
	Complete()
