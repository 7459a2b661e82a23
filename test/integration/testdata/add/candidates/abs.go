package main

func add(a, b int) int {
	if a < 0 {
		a = -a
	}
	return a + b
}
