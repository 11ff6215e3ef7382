package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	feeTagRe  = regexp.MustCompile(`\[fee\s+([^\]]*)\]`)
	feeAttrRe = regexp.MustCompile(`(percent|min_fee|max_fee)\s*=\s*"?(-?[0-9]*\.?[0-9]+)"?`)
	numericRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// ParseCost interprets a WooCommerce-style cost expression against an order
// subtotal. Two forms are understood: a flat amount (currency noise like "$"
// and "," is tolerated) and the percentage fee markup
// [fee percent="10" min_fee="5" max_fee="50"], which yields
// clamp(subtotal*10%, 5, 50). min_fee defaults to 0 and max_fee to unbounded.
//
// The ok result distinguishes "no cost determined" from a genuine free (zero)
// rate; callers must not conflate the two.
func ParseCost(costString string, subtotal float64) (float64, bool) {
	costString = strings.TrimSpace(costString)
	if costString == "" {
		return 0, false
	}

	if tag := feeTagRe.FindStringSubmatch(costString); tag != nil {
		cost, status := parseFeeTag(tag[1], subtotal)
		switch status {
		case feeOK:
			return cost, true
		case feeInvalid:
			return 0, false
		}
		// feeNoPercent: markup without a percent attribute falls back to
		// the flat-amount reading of whatever number the string carries.
	}

	return parseFlatAmount(costString)
}

type feeStatus int

const (
	feeOK feeStatus = iota
	feeNoPercent
	feeInvalid
)

func parseFeeTag(attrs string, subtotal float64) (float64, feeStatus) {
	percent := math.NaN()
	minFee := 0.0
	maxFee := math.Inf(1)

	for _, m := range feeAttrRe.FindAllStringSubmatch(attrs, -1) {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil || value < 0 {
			return 0, feeInvalid
		}
		switch m[1] {
		case "percent":
			percent = value
		case "min_fee":
			minFee = value
		case "max_fee":
			maxFee = value
		}
	}

	if math.IsNaN(percent) {
		return 0, feeNoPercent
	}

	cost := subtotal * percent / 100
	if cost < minFee {
		cost = minFee
	}
	if cost > maxFee {
		cost = maxFee
	}
	return cost, feeOK
}

func parseFlatAmount(costString string) (float64, bool) {
	if strings.HasPrefix(costString, "-") {
		return 0, false
	}
	num := numericRe.FindString(costString)
	if num == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
