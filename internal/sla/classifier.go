// Package sla derives breach status for open tickets from their priority
// thresholds and groups them for the operations dashboard.
package sla

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultResponseMinutes = 480
	DefaultResolveMinutes  = 1440

	// AtRiskPercent is the resolve percentage from which a ticket is at risk.
	AtRiskPercent = 75
)

// Bucket is the dashboard group a ticket falls into.
type Bucket string

const (
	BucketBreached Bucket = "BREACHED"
	BucketAtRisk   Bucket = "AT_RISK"
	BucketOnTrack  Bucket = "ON_TRACK"
)

// Thresholds are a priority's SLA minutes. Nil means use the default.
type Thresholds struct {
	ResponseMinutes *int
	ResolveMinutes  *int
}

// Status is the SLA position of a single ticket at a point in time.
type Status struct {
	AgeMinutes       int
	AgeText          string
	ResponseMinutes  int
	ResolveMinutes   int
	ResponseBreached bool
	ResolveBreached  bool
	ResponsePercent  int
	ResolvePercent   int
}

// Bucket classifies the status.
func (s Status) Bucket() Bucket {
	switch {
	case s.ResolveBreached:
		return BucketBreached
	case s.ResolvePercent >= AtRiskPercent:
		return BucketAtRisk
	default:
		return BucketOnTrack
	}
}

// Evaluate computes the status of a ticket created at createdAt.
func Evaluate(createdAt, now time.Time, th Thresholds) Status {
	age := int(now.Sub(createdAt) / time.Minute)
	if age < 0 {
		age = 0
	}
	response := effective(th.ResponseMinutes, DefaultResponseMinutes)
	resolve := effective(th.ResolveMinutes, DefaultResolveMinutes)

	return Status{
		AgeMinutes:       age,
		AgeText:          AgeText(age),
		ResponseMinutes:  response,
		ResolveMinutes:   resolve,
		ResponseBreached: age > response,
		ResolveBreached:  age > resolve,
		ResponsePercent:  percent(age, response),
		ResolvePercent:   percent(age, resolve),
	}
}

// AgeText renders an age in minutes for Thai-speaking operators.
func AgeText(minutes int) string {
	hours := minutes / 60
	days := hours / 24
	switch {
	case days >= 1:
		return fmt.Sprintf("%d วัน %d ชม.", days, hours%24)
	case hours >= 1:
		return fmt.Sprintf("%d ชม. %d นาที", hours, minutes%60)
	default:
		return fmt.Sprintf("%d นาที", minutes)
	}
}

func effective(v *int, fallback int) int {
	if v == nil || *v <= 0 {
		return fallback
	}
	return *v
}

func percent(part, whole int) int {
	p := int(math.Round(float64(part) / float64(whole) * 100))
	if p > 100 {
		return 100
	}
	return p
}
