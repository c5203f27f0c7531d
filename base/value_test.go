package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueYAML(t *testing.T) {
	input := `
name: checkout
replicas: 3
ratio: 0.25
canary: true
port: "8080"
`
	attributes := map[string]Value{}
	require.NoError(t, yaml.Unmarshal([]byte(input), &attributes))

	assert.Equal(t, StringValue("checkout"), attributes["name"])
	assert.Equal(t, IntValue(3), attributes["replicas"])
	assert.Equal(t, FloatValue(0.25), attributes["ratio"])
	assert.Equal(t, BoolValue(true), attributes["canary"])
	assert.Equal(t, StringValue("8080"), attributes["port"])

	out, merr := yaml.Marshal(attributes)
	require.NoError(t, merr)
	reloaded := map[string]Value{}
	require.NoError(t, yaml.Unmarshal(out, &reloaded))
	assert.Equal(t, attributes, reloaded)
}

func TestValueYAMLRejectsNonScalar(t *testing.T) {
	attributes := map[string]Value{}
	err := yaml.Unmarshal([]byte("nested:\n  inner: 1\n"), &attributes)
	assert.ErrorContains(t, err, "must be a scalar")
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "0.5", FloatValue(0.5).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "text", StringValue("text").String())
}
