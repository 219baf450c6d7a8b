package cp3d

// Snapshot is the state committed at the end of a tick. Snapshots are never
// modified once published, readers may keep them as long as they like.
type Snapshot struct {
	// Stamp counts ticks since the space was created.
	Stamp uint
	// Time is the simulated time in seconds.
	Time float64

	Transforms map[BodyID]Transform
}

// Transform returns the committed transform of id.
func (s *Snapshot) Transform(id BodyID) (Transform, bool) {
	if s == nil {
		return Transform{}, false
	}
	t, ok := s.Transforms[id]
	return t, ok
}

// CommitFunc is called after every tick with the freshly published snapshot.
// It runs on the stepping goroutine while the space is locked.
type CommitFunc func(snapshot *Snapshot)

func (space *Space) commit() {
	snap := &Snapshot{
		Stamp:      space.stamp,
		Time:       space.time,
		Transforms: make(map[BodyID]Transform, space.bodies.len()),
	}
	space.bodies.each(func(_ handle, body *Body) {
		snap.Transforms[body.id] = body.Transform()
	})
	space.snapshot.Store(snap)

	if space.commitFunc != nil {
		space.commitFunc(snap)
	}
}
