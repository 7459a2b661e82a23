package main

func fib(n int) (int, error) {
	if n == 0 || n == 1 {
		return n, nil
	}
	a, _ := fib(n - 1)
	b, _ := fib(n - 2)
	return a + b, nil
}
