package model

import "strings"

// TestCondition is the network condition encoded in a test name such as
// "munich_wlan_noload".
type TestCondition struct {
	Location string `json:"location"`
	WLAN     bool   `json:"wlan"`
	Load     bool   `json:"load"`
}

// Medium returns "wlan" or "lan".
func (c TestCondition) Medium() string {
	if c.WLAN {
		return "wlan"
	}
	return "lan"
}

// ConditionOf derives the test condition from a test name.
func ConditionOf(test string) TestCondition {
	lower := strings.ToLower(test)
	location := "unknown"
	if i := strings.Index(test, "_"); i >= 0 {
		location = test[:i]
	}
	return TestCondition{
		Location: location,
		WLAN:     strings.Contains(lower, "wlan"),
		Load:     !strings.Contains(lower, "noload"),
	}
}
