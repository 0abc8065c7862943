package main

// Canvas wraps the toolkit's drawing surface.
type Canvas struct{}

func NewCanvas() *Canvas { return &Canvas{} }

func (c *Canvas) Resize(w, h int) {}

func (c *Canvas) SetTitle(s string) {
	defer func() {
		walk := func() {
			_ = c.repaint
		}
		walk()
	}()
}

func (c *Canvas) repaint() {}
