// Package healthwatch periodically reports the health of every circuit
// breaker in a registry. It logs transitions between healthy and unhealthy
// rather than every tick, so quiet systems stay quiet in the logs.
package healthwatch
