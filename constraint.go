package cp3d

type Constrainer interface {
	PreStep(dt float32)
	ApplyCachedImpulse(dt_coef float32)
	ApplyImpulse(dt float32)
	ApplyBiasImpulse(dt float32)
	GetImpulse() float32
}

type ConstraintPreSolveFunc func(*Constraint, *Space)
type ConstraintPostSolveFunc func(*Constraint, *Space)

type Constraint struct {
	Class Constrainer
	space *Space
	id    ConstraintID

	a, b *Body

	maxForce, errorBias, maxBias float32

	collideBodies bool
	PreSolve      ConstraintPreSolveFunc
	PostSolve     ConstraintPostSolveFunc

	// inert constraints lost a body and are skipped by the solver
	inert bool
	// degenerate constraints join two static bodies
	degenerate, reported bool

	UserData interface{}
}

func NewConstraint(class Constrainer, a, b *Body) *Constraint {
	return &Constraint{
		Class: class,
		a:     a,
		b:     b,

		maxForce:  INFINITY,
		errorBias: 0.2,
		maxBias:   INFINITY,

		collideBodies: false,
	}
}

func (c *Constraint) ID() ConstraintID {
	return c.id
}

func (c *Constraint) Bodies() (*Body, *Body) {
	return c.a, c.b
}

func (c *Constraint) MaxForce() float32 {
	return c.maxForce
}

func (c *Constraint) SetMaxForce(max float32) {
	cpAssert(max >= 0.0, "Must be positive")
	c.maxForce = max
}

func (c *Constraint) MaxBias() float32 {
	return c.maxBias
}

// SetMaxBias caps the speed at which joint drift is corrected.
func (c *Constraint) SetMaxBias(max float32) {
	cpAssert(max >= 0, "Must be positive")
	c.maxBias = max
}

func (c *Constraint) ErrorBias() float32 {
	return c.errorBias
}

// SetErrorBias sets the fraction of positional error corrected per step.
func (c *Constraint) SetErrorBias(errorBias float32) {
	cpAssert(errorBias >= 0, "Must be positive")
	c.errorBias = errorBias
}

func (c *Constraint) CollideBodies() bool {
	return c.collideBodies
}

func (c *Constraint) SetCollideBodies(collideBodies bool) {
	c.collideBodies = collideBodies
}

// Inert reports whether one of the bodies was removed.
func (c *Constraint) Inert() bool {
	return c.inert
}

// Degenerate reports whether neither body can move.
func (c *Constraint) Degenerate() bool {
	return c.degenerate
}

// active reports whether the solver should run the constraint this step.
func (c *Constraint) active() bool {
	if c.inert {
		return false
	}
	c.degenerate = c.a.m_inv == 0 && c.b.m_inv == 0
	return !c.degenerate
}

func (c *Constraint) detach() {
	c.a.removeConstraint(c)
	if c.b != c.a {
		c.b.removeConstraint(c)
	}
}

// bias_velocity scales a positional error into a correction velocity.
func bias_velocity(errorBias, maxBias float32, err Vector, dt float32) Vector {
	return ClampLength(err.Mul(-errorBias/dt), maxBias)
}
