package main

func fib(n int) (int, error) {
	memo := make([]int, 3)
	memo[1] = 1
	for i := 2; i <= n; i++ {
		memo[i] = memo[i-1] + memo[i-2]
	}
	if n < 0 {
		n = 0
	}
	return memo[n], nil
}
