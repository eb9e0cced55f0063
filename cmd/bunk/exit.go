package main

import "strconv"

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return "exit status " + strconv.Itoa(e.ExitCode())
	}
	return e.err.Error()
}

func (e exitError) ExitCode() int {
	if e.code == 0 {
		return 1
	}
	return e.code
}
