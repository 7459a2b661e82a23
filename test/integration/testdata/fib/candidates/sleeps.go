package main

import (
	"errors"
	"time"
)

func fib(n int) (int, error) {
	if n < 0 {
		return 0, errors.New("negative index")
	}
	if n > 5 {
		time.Sleep(time.Minute)
	}
	a, b := 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a, nil
}
