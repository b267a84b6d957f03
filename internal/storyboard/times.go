package storyboard

// TimelineSeconds is a position on the absolute video timeline.
//
// TimelineSeconds and SceneSeconds are distinct types on purpose: an event's
// offset lives on its scene's clock, and comparing it against a timeline
// position without going through Scene.RelativeTime is a bug the compiler
// should catch.
type TimelineSeconds float64

// SceneSeconds is an offset from the owning scene's start.
type SceneSeconds float64
