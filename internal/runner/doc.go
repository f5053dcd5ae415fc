// Package runner executes the fixed extraction sequence and collects the
// outcomes into a Report for the output layer.
package runner
