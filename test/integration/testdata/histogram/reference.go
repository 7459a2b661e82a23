package main

func histogram(xs []int) map[int]int {
	h := make(map[int]int)
	for _, x := range xs {
		h[x]++
	}
	return h
}
