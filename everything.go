package cp3d

import "github.com/chewxy/math32"

const INFINITY float32 = math32.MaxFloat32

const MAGIC_EPSILON float32 = 1e-6

// Arbiter states
const (
	// Arbiter is active and its the first collision.
	CP_ARBITER_STATE_FIRST_COLLISION = iota
	// Arbiter is active and its not the first collision.
	CP_ARBITER_STATE_NORMAL
	// Collison is no longer active. A space will cache an arbiter for up to Config.CollisionPersistence more steps.
	CP_ARBITER_STATE_CACHED
	// Collison arbiter is invalid because one of the bodies was removed.
	CP_ARBITER_STATE_INVALIDATED
)

// Contacts that start closer than this are treated as the same point when
// carrying impulses over from the previous step.
const CONTACT_MATCH_DISTANCE float32 = 0.05

const MAX_CONTACTS_PER_ARBITER = 4
