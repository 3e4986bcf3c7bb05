// Package telemetry sets up process-wide logging and tracing.
package telemetry
