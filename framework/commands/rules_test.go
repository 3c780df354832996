package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/clikernel/framework/commands"
)

func argumentError(t *testing.T, err error) *commands.ArgumentError {
	t.Helper()
	var argErr *commands.ArgumentError
	require.ErrorAs(t, err, &argErr)
	return argErr
}

func TestValidateArguments_NoParametersRejectsArguments(t *testing.T) {
	t.Parallel()

	require.NoError(t, commands.ValidateArguments(nil, nil))

	err := commands.ValidateArguments(nil, []string{"extra"})
	assert.Equal(t, "This command doesn't accept parameters.", argumentError(t, err).First("arguments"))
}

func TestValidateArguments_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		rules   string
		args    []string
		wantMsg string
	}{
		{"required present", "required", []string{"x"}, ""},
		{"required missing", "required", nil, "The p argument is required."},
		{"required blank", "required", []string{"  "}, "The p argument is required."},
		{"sometimes skips absent", "sometimes|integer", nil, ""},
		{"numeric ok", "numeric", []string{"1.5"}, ""},
		{"numeric bad", "numeric", []string{"abc"}, "The p must be a number."},
		{"integer bad", "integer", []string{"1.5"}, "The p must be an integer."},
		{"min bad", "min:3", []string{"ab"}, "The p must be at least 3 characters."},
		{"max bad", "max:2", []string{"abc"}, "The p may not be greater than 2 characters."},
		{"in ok", "in:android, ios", []string{"ios"}, ""},
		{"in bad", "in:android,ios", []string{"windows"}, "The selected p is invalid."},
		{"not_in bad", "not_in:root", []string{"root"}, "The selected p is invalid."},
		{"alpha_dash bad", "alpha_dash", []string{"a b"}, "The p may only contain letters, numbers, dashes and underscores."},
		{"regex ok", `regex:^v\d+$`, []string{"v12"}, ""},
		{"regex bad", `regex:^v\d+$`, []string{"12"}, "The p format is invalid."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := commands.ValidateArguments([]commands.Parameter{{Name: "p", Rules: tc.rules}}, tc.args)
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.wantMsg, argumentError(t, err).First("p"))
		})
	}
}

func TestValidateArguments_StopsAtFirstFailingRule(t *testing.T) {
	t.Parallel()

	err := commands.ValidateArguments([]commands.Parameter{{Name: "count", Rules: "required|integer|min:2"}}, nil)
	assert.Len(t, argumentError(t, err).Bag["count"], 1)
}

func TestParameter_Mandatory(t *testing.T) {
	t.Parallel()

	assert.True(t, commands.Parameter{Rules: "alpha_dash | required"}.Mandatory())
	assert.False(t, commands.Parameter{Rules: "sometimes"}.Mandatory())
}
