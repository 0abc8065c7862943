package main

import "strings"

func main() {
	var b strings.Builder
	b.WriteString("QTimer")
	_ = b.String()
}
