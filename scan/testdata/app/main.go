package main

import "fmt"

type window struct {
	view *Canvas
}

func main() {
	w := &window{view: NewCanvas()}
	w.view.Resize(640, 480)
	w.view.SetTitle("hello there")
	handler := lookupSlot("paintEvent")
	fmt.Println(handler)
}

func lookupSlot(name string) any {
	return registry[name]
}

var registry = map[string]any{}
