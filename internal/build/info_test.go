package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	assert.Equal(t, "govuk-admin dev (commit unknown, branch unknown)", Summary("govuk-admin"))
}
