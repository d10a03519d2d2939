package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0"

func TestResolve_Deterministic(t *testing.T) {
	first := Resolve("10.0.0.1:51234", chromeAgent, "alice")
	second := Resolve("10.0.0.1:51234", chromeAgent, "alice")

	assert.Equal(t, first, second)
}

func TestResolve_StripsPort(t *testing.T) {
	withPort := Resolve("10.0.0.1:51234", chromeAgent, "")
	otherPort := Resolve("10.0.0.1:9999", chromeAgent, "")
	bareHost := Resolve("10.0.0.1", chromeAgent, "")

	assert.Equal(t, withPort, otherPort)
	assert.Equal(t, withPort, bareHost)
}

func TestResolve_EmptyAgentHashesToFixedValue(t *testing.T) {
	// md5("") = d41d8cd98f00b204e9800998ecf8427e
	assert.Equal(t, "10.0.0.1_d41d8cd9", Resolve("10.0.0.1", "", ""))
}

func TestResolve_UsernameSuffix(t *testing.T) {
	anonymous := Resolve("10.0.0.1", chromeAgent, "")
	named := Resolve("10.0.0.1", chromeAgent, "alice")

	assert.Equal(t, anonymous+"_alice", named)
}

func TestResolve_DistinguishesAgentsBehindSameAddress(t *testing.T) {
	chrome := Resolve("10.0.0.1", chromeAgent, "")
	firefox := Resolve("10.0.0.1", "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/121.0", "")

	assert.NotEqual(t, chrome, firefox)
}
