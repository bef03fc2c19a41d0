package apperror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_MessageIncludesFieldAndReason(t *testing.T) {
	err := NewConfigError("solver_timeout_s", "must be positive")
	assert.Equal(t, "config error: solver_timeout_s: must be positive", err.Error())
}

func TestDataError_OmitsRegionWhenBlank(t *testing.T) {
	withRegion := NewDataError("A", "Solar", "negative value at hour 3")
	assert.Equal(t, "data error: region A, column Solar: negative value at hour 3", withRegion.Error())

	withoutRegion := NewDataError("", "Solar", "negative value at hour 3")
	assert.Equal(t, "data error: Solar: negative value at hour 3", withoutRegion.Error())
}

func TestInfeasibilityError_MessageIncludesBackendAndStatus(t *testing.T) {
	err := NewInfeasibilityError("simplex", "Infeasible")
	assert.Equal(t, "solver simplex returned non-optimal status: Infeasible", err.Error())
}

func TestNumericError_OmitsHourWhenNegative(t *testing.T) {
	hourScoped := NewNumericError("A", 5, "division by zero load")
	assert.Equal(t, "numeric error: region A, hour 5: division by zero load", hourScoped.Error())

	unscoped := NewNumericError("A", -1, "division by zero load")
	assert.Equal(t, "numeric error: region A: division by zero load", unscoped.Error())
}
