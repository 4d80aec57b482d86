package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	s := Default()
	s.QueryTimeoutSecs = 0
	assert.Error(t, s.Validate())
}

func TestValidate_AllowsZeroRetryCount(t *testing.T) {
	s := Default()
	s.RetryCount = 0
	assert.NoError(t, s.Validate())
}

func TestValidate_RejectsNegativeRetryCount(t *testing.T) {
	s := Default()
	s.RetryCount = -1
	assert.Error(t, s.Validate())
}

func TestValidate_RejectsEmptyOutputFolder(t *testing.T) {
	s := Default()
	s.OutputFolder = ""
	assert.Error(t, s.Validate())
}

func TestQueryTimeout_ConvertsSecondsToDuration(t *testing.T) {
	s := Default()
	s.QueryTimeoutSecs = 45
	assert.Equal(t, 45*time.Second, s.QueryTimeout())
}

func TestClone_IsIndependentValue(t *testing.T) {
	s := Default()
	clone := s.Clone()
	clone.OutputFolder = "changed"
	assert.NotEqual(t, s.OutputFolder, clone.OutputFolder)
}
