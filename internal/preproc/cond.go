package preproc

// condState tracks one #if/#ifdef level.
type condState struct {
	active    bool // this branch is being emitted
	taken     bool // some branch at this level was already taken
	parentOn  bool
	openLine  int
	sawElse   bool
}

// condStack tracks nested conditional-compilation state.
type condStack struct {
	stack []condState
}

// Active reports whether output is currently enabled at the innermost level.
func (c *condStack) Active() bool {
	for _, s := range c.stack {
		if !s.active {
			return false
		}
	}

	return true
}

func (c *condStack) Push(cond bool, line int) {
	parentOn := c.Active()
	c.stack = append(c.stack, condState{
		active:   parentOn && cond,
		taken:    cond,
		parentOn: parentOn,
		openLine: line,
	})
}

func (c *condStack) Elif(cond bool) bool {
	if len(c.stack) == 0 {
		return false
	}

	top := &c.stack[len(c.stack)-1]
	if top.sawElse {
		return false
	}

	top.active = top.parentOn && cond && !top.taken
	if cond {
		top.taken = true
	}

	return true
}

func (c *condStack) Else() bool {
	if len(c.stack) == 0 {
		return false
	}

	top := &c.stack[len(c.stack)-1]
	if top.sawElse {
		return false
	}

	top.sawElse = true
	top.active = top.parentOn && !top.taken
	top.taken = true

	return true
}

func (c *condStack) Pop() bool {
	if len(c.stack) == 0 {
		return false
	}

	c.stack = c.stack[:len(c.stack)-1]

	return true
}

func (c *condStack) Depth() int {
	return len(c.stack)
}

func (c *condStack) UnclosedLine() int {
	if len(c.stack) == 0 {
		return 0
	}

	return c.stack[len(c.stack)-1].openLine
}
