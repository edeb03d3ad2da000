// Package main is the entry point for CourseGate, the entitlement and
// pricing reconciliation service.
package main

func main() {
	Execute()
}
