package cp3d

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BodyDef describes a body to add to a space.
type BodyDef struct {
	// Shape may be nil for bodies that only anchor constraints.
	Shape *Shape
	// Mass of zero makes an immovable static body.
	Mass      float32
	Transform Transform

	Filter      ShapeFilter
	Friction    float32
	Restitution float32

	LinearDamping, AngularDamping float32

	Velocity, AngularVelocity Vector

	UserData interface{}
}

// NewBodyDef returns a definition that collides with everything.
func NewBodyDef(shape *Shape, mass float32) BodyDef {
	return BodyDef{
		Shape:     shape,
		Mass:      mass,
		Transform: NewTransformIdentity(),
		Filter:    SHAPE_FILTER_ALL,
		Friction:  0.5,
	}
}

type ConstraintKind int

const (
	CONSTRAINT_POINT2POINT ConstraintKind = iota
	CONSTRAINT_HINGE
)

// ConstraintDef describes a joint between two bodies. Pivots and axes are in
// the local frame of their body.
type ConstraintDef struct {
	Kind         ConstraintKind
	BodyA, BodyB BodyID

	PivotA, PivotB Vector

	// Hinge only.
	AxisA, AxisB Vector
	Lower, Upper float32

	CollideBodies bool
}

type pairKey struct {
	a, b BodyID
}

// Space owns bodies and constraints and advances them in fixed steps.
// All exported methods are safe for concurrent use, except that callbacks
// run with the space locked and must not call back into it.
type Space struct {
	mu sync.Mutex

	cfg     Config
	gravity Vector

	stamp       uint
	time        float64
	accumulator float64
	curr_dt     float32
	paused      bool
	closed      bool

	bodies      *handleTable[*Body]
	constraints *handleTable[*Constraint]

	// per step scratch
	bodyList       []*Body
	constraintList []*Constraint
	proxies        []Proxy
	pairs          []Pair
	infos          []CollisionInfo
	sweep          SweepAndPrune

	arbiters       []*Arbiter
	cachedArbiters map[pairKey]*Arbiter
	pooledArbiters []*Arbiter

	snapshot     atomic.Pointer[Snapshot]
	commitFunc   CommitFunc
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// NewSpace creates a space with DefaultConfig.
func NewSpace() *Space {
	space, _ := NewSpaceWithConfig(DefaultConfig())
	return space
}

func NewSpaceWithConfig(cfg Config) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	space := &Space{
		cfg:            cfg,
		gravity:        cfg.GravityVector(),
		bodies:         newHandleTable[*Body](cfg.MaxBodies),
		constraints:    newHandleTable[*Constraint](cfg.MaxConstraints),
		cachedArbiters: map[pairKey]*Arbiter{},
		logger:         slog.Default(),
	}
	space.snapshot.Store(&Snapshot{Transforms: map[BodyID]Transform{}})
	return space, nil
}

func (space *Space) Config() Config {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.cfg
}

func (space *Space) SetLogger(logger *slog.Logger) {
	space.mu.Lock()
	defer space.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	space.logger = logger
}

func (space *Space) SetErrorHandler(handler ErrorHandler) {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.errorHandler = handler
}

func (space *Space) SetCommitFunc(f CommitFunc) {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.commitFunc = f
}

// Snapshot returns the transforms committed by the last tick without
// waiting for a tick in progress.
func (space *Space) Snapshot() *Snapshot {
	return space.snapshot.Load()
}

func (space *Space) Gravity() Vector {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.gravity
}

func (space *Space) SetGravity(gravity Vector) {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.gravity = gravity
}

// Pause stops Step from accumulating time. State is kept.
func (space *Space) Pause() {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.paused = true
}

func (space *Space) Resume() {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.paused = false
}

func (space *Space) Paused() bool {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.paused
}

// Stamp is the number of ticks run so far.
func (space *Space) Stamp() uint {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.stamp
}

// Close waits for a tick in progress and releases all bodies and
// constraints. Later calls fail with ErrClosed.
func (space *Space) Close() error {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return ErrClosed
	}
	space.closed = true
	space.bodies.reset()
	space.constraints.reset()
	space.arbiters = nil
	space.cachedArbiters = map[pairKey]*Arbiter{}
	space.pooledArbiters = nil
	space.bodyList = nil
	space.constraintList = nil
	space.proxies = nil
	space.pairs = nil
	space.infos = nil
	return nil
}

func (space *Space) AddBody(def BodyDef) (BodyID, error) {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return 0, ErrClosed
	}

	if def.Shape != nil && def.Shape.body != nil {
		return 0, invalidShape("shape is already attached to body %v", def.Shape.body.id)
	}
	if !IsFinite(def.Mass) || def.Mass < 0 {
		return 0, invalidShape("mass %v", def.Mass)
	}
	if !def.Transform.IsFinite() {
		return 0, errors.WithStack(ErrInvalidTransform)
	}

	body := NewBody(def.Mass, def.Shape)
	h, ok := space.bodies.insert(body)
	if !ok {
		if def.Shape != nil {
			def.Shape.body = nil
		}
		return 0, errors.WithStack(&Error{Kind: CapacityExhausted, Msg: "body table is full"})
	}
	body.id = BodyID(h)
	body.space = space
	body.filter = def.Filter
	body.SetFriction(def.Friction)
	body.SetRestitution(def.Restitution)
	body.SetDamping(def.LinearDamping, def.AngularDamping)
	body.SetTransform(def.Transform)
	body.SetVelocity(def.Velocity)
	body.SetAngularVelocity(def.AngularVelocity)
	body.UserData = def.UserData

	space.logger.Debug("body added", "body", body.id, "mass", body.m)
	return body.id, nil
}

// RemoveBody deletes a body. Constraints attached to it become inert and are
// reported as dangling; remove them with RemoveConstraint.
func (space *Space) RemoveBody(id BodyID) error {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return ErrClosed
	}

	body, ok := space.bodies.remove(handle(id))
	if !ok {
		return errors.Wrapf(ErrNoSuchBody, "body %v", id)
	}

	for _, c := range body.constraints {
		if c.inert {
			continue
		}
		c.inert = true
		space.report(&Error{Kind: DanglingConstraintReference, Body: id, Constraint: c.id})
	}

	for key, arb := range space.cachedArbiters {
		if arb.body_a == body || arb.body_b == body {
			arb.state = CP_ARBITER_STATE_INVALIDATED
			delete(space.cachedArbiters, key)
		}
	}
	space.arbiters = filterArbiters(space.arbiters, body)

	if body.shape != nil {
		body.shape.body = nil
	}
	body.space = nil
	return nil
}

func filterArbiters(arbiters []*Arbiter, body *Body) []*Arbiter {
	out := arbiters[:0]
	for _, arb := range arbiters {
		if arb.body_a != body && arb.body_b != body {
			out = append(out, arb)
		}
	}
	for i := len(out); i < len(arbiters); i++ {
		arbiters[i] = nil
	}
	return out
}

func (space *Space) AddConstraint(def ConstraintDef) (ConstraintID, error) {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return 0, ErrClosed
	}

	a, ok := space.bodies.get(handle(def.BodyA))
	if !ok {
		return 0, errors.Wrapf(ErrNoSuchBody, "body %v", def.BodyA)
	}
	b, ok := space.bodies.get(handle(def.BodyB))
	if !ok {
		return 0, errors.Wrapf(ErrNoSuchBody, "body %v", def.BodyB)
	}
	if a == b {
		return 0, errors.Errorf("cp3d: constraint joins body %v to itself", def.BodyA)
	}

	var c *Constraint
	switch def.Kind {
	case CONSTRAINT_POINT2POINT:
		c = NewPoint2Point(a, b, def.PivotA, def.PivotB)
	case CONSTRAINT_HINGE:
		c = NewHinge(a, b, def.PivotA, def.PivotB, def.AxisA, def.AxisB, def.Lower, def.Upper)
	default:
		return 0, errors.Errorf("cp3d: unknown constraint kind %d", def.Kind)
	}
	c.errorBias = space.cfg.Baumgarte
	c.collideBodies = def.CollideBodies

	h, ok := space.constraints.insert(c)
	if !ok {
		return 0, errors.WithStack(&Error{Kind: CapacityExhausted, Msg: "constraint table is full"})
	}
	c.id = ConstraintID(h)
	c.space = space
	a.addConstraint(c)
	b.addConstraint(c)

	if !c.active() {
		c.reported = true
		space.report(&Error{Kind: DegenerateConstraint, Constraint: c.id, Msg: "both bodies are static"})
	}
	return c.id, nil
}

func (space *Space) AddPoint2Point(a, b BodyID, pivotA, pivotB Vector) (ConstraintID, error) {
	return space.AddConstraint(ConstraintDef{
		Kind:   CONSTRAINT_POINT2POINT,
		BodyA:  a,
		BodyB:  b,
		PivotA: pivotA,
		PivotB: pivotB,
	})
}

func (space *Space) AddHinge(a, b BodyID, pivotA, pivotB, axisA, axisB Vector, lower, upper float32) (ConstraintID, error) {
	return space.AddConstraint(ConstraintDef{
		Kind:   CONSTRAINT_HINGE,
		BodyA:  a,
		BodyB:  b,
		PivotA: pivotA,
		PivotB: pivotB,
		AxisA:  axisA,
		AxisB:  axisB,
		Lower:  lower,
		Upper:  upper,
	})
}

func (space *Space) RemoveConstraint(id ConstraintID) error {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return ErrClosed
	}

	c, ok := space.constraints.remove(handle(id))
	if !ok {
		return errors.Wrapf(ErrNoSuchConstraint, "constraint %v", id)
	}
	c.detach()
	c.space = nil
	return nil
}

// withBody runs f on a live body under the lock.
func (space *Space) withBody(id BodyID, f func(body *Body)) error {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return ErrClosed
	}
	body, ok := space.bodies.get(handle(id))
	if !ok {
		return errors.Wrapf(ErrNoSuchBody, "body %v", id)
	}
	f(body)
	return nil
}

// ApplyImpulse applies impulse at relativePoint, a world space offset from
// the body's center.
func (space *Space) ApplyImpulse(id BodyID, impulse, relativePoint Vector) error {
	return space.withBody(id, func(body *Body) {
		body.ApplyImpulse(impulse, relativePoint)
	})
}

func (space *Space) SetVelocity(id BodyID, v Vector) error {
	return space.withBody(id, func(body *Body) {
		body.SetVelocity(v)
	})
}

func (space *Space) SetAngularVelocity(id BodyID, w Vector) error {
	return space.withBody(id, func(body *Body) {
		body.SetAngularVelocity(w)
	})
}

func (space *Space) SetTransform(id BodyID, t Transform) error {
	if !t.IsFinite() {
		return errors.Wrapf(ErrInvalidTransform, "body %v", id)
	}
	return space.withBody(id, func(body *Body) {
		body.SetTransform(t)
	})
}

func (space *Space) Transform(id BodyID) (t Transform, err error) {
	err = space.withBody(id, func(body *Body) {
		t = body.Transform()
	})
	return t, err
}

// Body returns the body for id. The body must not be touched while another
// goroutine is stepping the space.
func (space *Space) Body(id BodyID) (*Body, bool) {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.bodies.get(handle(id))
}

// Constraint returns the constraint for id. Use its Class to reach the
// joint specific state, for example c.Class.(*Hinge).Angle().
func (space *Space) Constraint(id ConstraintID) (*Constraint, bool) {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.constraints.get(handle(id))
}

func (space *Space) BodyCount() int {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.bodies.len()
}

func (space *Space) ConstraintCount() int {
	space.mu.Lock()
	defer space.mu.Unlock()
	return space.constraints.len()
}

func (space *Space) EachBody(f func(*Body)) {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.bodies.each(func(_ handle, body *Body) {
		f(body)
	})
}

func (space *Space) EachConstraint(f func(*Constraint)) {
	space.mu.Lock()
	defer space.mu.Unlock()
	space.constraints.each(func(_ handle, c *Constraint) {
		f(c)
	})
}

// Contacts returns the contacts resolved by the last tick.
func (space *Space) Contacts() []ContactPoint {
	space.mu.Lock()
	defer space.mu.Unlock()
	var out []ContactPoint
	for _, arb := range space.arbiters {
		out = append(out, arb.ContactPoints()...)
	}
	return out
}

// Step adds realElapsed seconds to the accumulator and runs as many fixed
// steps as fit, at most Config.MaxSubsteps. It returns the steps run.
func (space *Space) Step(realElapsed float64) int {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed || space.paused || !(realElapsed > 0) || math.IsInf(realElapsed, 0) {
		return 0
	}

	dt := space.cfg.Timestep
	space.accumulator += realElapsed
	n := int(space.accumulator / dt)
	if n > space.cfg.MaxSubsteps {
		dropped := n - space.cfg.MaxSubsteps
		space.logger.Debug("dropping simulation steps", "dropped", dropped, "elapsed", realElapsed)
		space.accumulator -= float64(dropped) * dt
		n = space.cfg.MaxSubsteps
	}
	for i := 0; i < n; i++ {
		space.accumulator -= dt
		space.step(float32(dt))
	}
	return n
}

// Tick runs exactly one fixed step, ignoring Pause.
func (space *Space) Tick() error {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return ErrClosed
	}
	space.step(float32(space.cfg.Timestep))
	return nil
}

func (space *Space) report(err *Error) {
	space.logger.Warn("physics error",
		"kind", err.Kind.String(),
		"body", err.Body,
		"constraint", err.Constraint,
		"msg", err.Msg,
	)
	if space.errorHandler != nil {
		space.errorHandler(err)
	}
}

func (space *Space) step(dt float32) {
	space.stamp++

	prev_dt := space.curr_dt
	space.curr_dt = dt
	cfg := &space.cfg

	bodies := space.bodyList[:0]
	space.bodies.each(func(_ handle, body *Body) {
		bodies = append(bodies, body)
	})
	space.bodyList = bodies

	constraints := space.constraintList[:0]
	space.constraints.each(func(_ handle, c *Constraint) {
		if c.active() {
			constraints = append(constraints, c)
		} else if c.degenerate && !c.reported {
			c.reported = true
			space.report(&Error{Kind: DegenerateConstraint, Constraint: c.id, Msg: "both bodies are static"})
		}
	})
	space.constraintList = constraints

	// Integrate velocities.
	gravity := space.gravity
	for _, body := range bodies {
		body.saveGood()
		if !body.IsStatic() {
			body.velocity_func(body, gravity, dt)
		}
	}

	// Find colliding pairs.
	space.collectPairs(bodies, dt)
	infos := space.narrowPhase(space.pairs)
	space.updateArbiters(infos)
	arbiters := space.arbiters

	// Prestep the arbiters and constraints.
	for _, arb := range arbiters {
		arb.PreStep(dt, cfg.CollisionSlop, cfg.Baumgarte, cfg.RestitutionThreshold)
	}
	for _, c := range constraints {
		if c.PreSolve != nil {
			c.PreSolve(c, space)
		}
		c.Class.PreStep(dt)
	}

	// Apply cached impulses
	var dt_coef float32
	if prev_dt != 0 {
		dt_coef = dt / prev_dt
	}
	for _, arb := range arbiters {
		arb.ApplyCachedImpulse(dt_coef)
	}
	for _, c := range constraints {
		c.Class.ApplyCachedImpulse(dt_coef)
	}

	// Run the impulse solver.
	for i := 0; i < cfg.Iterations; i++ {
		for _, arb := range arbiters {
			arb.ApplyImpulse()
		}
		for _, c := range constraints {
			c.Class.ApplyImpulse(dt)
		}
	}

	// Correct penetration and joint drift.
	for i := 0; i < cfg.PositionIterations; i++ {
		for _, arb := range arbiters {
			arb.ApplyBiasImpulse()
		}
		for _, c := range constraints {
			c.Class.ApplyBiasImpulse(dt)
		}
	}

	for _, c := range constraints {
		if c.PostSolve != nil {
			c.PostSolve(c, space)
		}
	}
	for _, arb := range arbiters {
		arb.state = CP_ARBITER_STATE_NORMAL
	}

	// Integrate positions.
	for _, body := range bodies {
		body.position_func(body, dt)
		if !body.sane() {
			body.restoreGood()
			space.report(&Error{Kind: NumericInstability, Body: body.id, Msg: "state reset to last good transform"})
		}
		if body.shape != nil {
			body.shape.CacheBB()
		}
	}

	space.time += float64(dt)
	space.commit()
}

func (space *Space) collectPairs(bodies []*Body, dt float32) {
	proxies := space.proxies[:0]
	for _, body := range bodies {
		if body.shape == nil || body.filter.Excluded() {
			continue
		}
		bb := body.shape.CacheBB()
		pad := space.cfg.BroadPhaseMargin + body.v.Len()*dt
		proxies = append(proxies, Proxy{Body: body, BB: bb.Pad(pad)})
	}
	space.proxies = proxies

	var bp BroadPhase = BruteForce{}
	if len(proxies) >= space.cfg.BruteForceThreshold {
		bp = &space.sweep
	}
	space.pairs = bp.Collect(proxies, QueryReject, space.pairs[:0])
}

// QueryReject rejects pairs that may never collide.
func QueryReject(a, b *Body) bool {
	return a == b ||
		(a.IsStatic() && b.IsStatic()) ||
		a.filter.Reject(b.filter) ||
		QueryRejectConstraints(a, b)
}

func QueryRejectConstraints(a, b *Body) bool {
	for _, c := range a.constraints {
		if !c.collideBodies && !c.inert && ((c.a == a && c.b == b) || (c.a == b && c.b == a)) {
			return true
		}
	}
	return false
}

// narrowPhase collides every pair. Results land in the slot of their pair so
// the output order never depends on scheduling.
func (space *Space) narrowPhase(pairs []Pair) []CollisionInfo {
	if cap(space.infos) < len(pairs) {
		space.infos = make([]CollisionInfo, len(pairs))
	}
	infos := space.infos[:len(pairs)]

	workers := space.cfg.NarrowPhaseWorkers
	if workers <= 1 || len(pairs) < space.cfg.ParallelThreshold {
		for i, pair := range pairs {
			Collide(pair.A.shape, pair.B.shape, &infos[i])
		}
		return infos
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (len(pairs) + workers - 1) / workers
	for start := 0; start < len(pairs); start += chunk {
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				Collide(pairs[i].A.shape, pairs[i].B.shape, &infos[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return infos
}

func (space *Space) updateArbiters(infos []CollisionInfo) {
	arbiters := space.arbiters[:0]
	for i := range infos {
		info := &infos[i]
		if info.count == 0 {
			continue
		}

		key := pairKey{space.pairs[i].A.id, space.pairs[i].B.id}
		arb, ok := space.cachedArbiters[key]
		if !ok {
			arb = space.newArbiter(info.a, info.b)
			space.cachedArbiters[key] = arb
		}
		arb.Update(info)
		arb.stamp = space.stamp
		arbiters = append(arbiters, arb)
	}
	space.arbiters = arbiters

	// Throw away old cached arbiters.
	for key, arb := range space.cachedArbiters {
		ticks := space.stamp - arb.stamp
		if ticks >= 1 && arb.state != CP_ARBITER_STATE_CACHED {
			arb.state = CP_ARBITER_STATE_CACHED
		}
		// arbiters touched this tick are never recycled
		if ticks >= 1 && ticks >= space.cfg.CollisionPersistence {
			delete(space.cachedArbiters, key)
			arb.count = 0
			space.pooledArbiters = append(space.pooledArbiters, arb)
		}
	}
}

func (space *Space) newArbiter(a, b *Shape) *Arbiter {
	if n := len(space.pooledArbiters); n > 0 {
		arb := space.pooledArbiters[n-1]
		space.pooledArbiters = space.pooledArbiters[:n-1]
		*arb = *NewArbiter(a, b)
		return arb
	}
	return NewArbiter(a, b)
}
