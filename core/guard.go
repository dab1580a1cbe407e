package core

// Guard is a single-flight reentrancy lock owned by one contract instance.
// Guarded entry points call Enter on the way in and defer Exit; a nested
// invocation of any entry point sharing the guard fails with ErrReentrantCall.
//
// The guard is not journaled: Exit always runs on the way out, reverted or not.
type Guard struct {
	entered bool
}

// Enter acquires the guard.
func (g *Guard) Enter() error {
	if g.entered {
		return ErrReentrantCall
	}
	g.entered = true
	return nil
}

// Exit releases the guard.
func (g *Guard) Exit() {
	g.entered = false
}

// Entered reports whether the guard is currently held.
func (g *Guard) Entered() bool {
	return g.entered
}
