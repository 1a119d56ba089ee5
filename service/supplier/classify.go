package supplier

import (
	"regexp"
	"strings"
)

const (
	ItemTypeTire      = "reifen"
	SubtypeCar        = "pkw"
	SubtypeMotorcycle = "motorrad"
)

var (
	runFlatPattern      = regexp.MustCompile(`(?i)run[\s-]*flat|rft|\brf\b`)
	severeWinterPattern = regexp.MustCompile(`(?i)3pmsf|three[\s-]*peaks?|schneeflocke`)
)

// isTireForCarOrBike is the business filter: only car and motorcycle tires are kept.
func isTireForCarOrBike(itemType, subtype string) bool {
	if strings.ToLower(itemType) != ItemTypeTire {
		return false
	}
	switch strings.ToLower(subtype) {
	case SubtypeCar, SubtypeMotorcycle:
		return true
	}
	return false
}

// IsRunFlat derives the run-flat flag from a model/profile text.
func IsRunFlat(model string) bool {
	return runFlatPattern.MatchString(model)
}

// IsSevereWinter derives the three-peak-mountain-snowflake flag from a model/profile text.
func IsSevereWinter(model string) bool {
	return severeWinterPattern.MatchString(model)
}
