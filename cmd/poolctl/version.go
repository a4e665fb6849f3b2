package main

import "fmt"

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

func version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}
