package version_test

import (
	"testing"

	"github.com/kyson-dev/sing-deploy/internal/version"

	"github.com/stretchr/testify/assert"
)

func TestInfo_String(t *testing.T) {
	v := version.Info{}
	result := v.String()

	assert.Contains(t, result, "sing-deploy")
	assert.Contains(t, result, "dev")
}
