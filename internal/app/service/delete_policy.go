package service

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what happens when shared master data that is still
// referenced gets deleted.
type DeletePolicy string

const (
	// DeletePolicyBlock refuses the delete with a ReferentialIntegrityError.
	DeletePolicyBlock DeletePolicy = "block"
	// DeletePolicyCascade removes dependent rows in the same transaction.
	DeletePolicyCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePolicyBlock:
		return DeletePolicyBlock, nil
	case DeletePolicyCascade:
		return DeletePolicyCascade, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

func (p DeletePolicy) cascades() bool {
	return p == DeletePolicyCascade
}
