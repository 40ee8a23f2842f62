// Package mode defines the run modes the service can be started in.
package mode

const (
	Dev  = "dev"
	Test = "test"
	Prod = "prod"
)
