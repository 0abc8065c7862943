package main

var w QWidget

func main() {
	w.resize(640, 480)
	connect(w, "paintEvent")
}
