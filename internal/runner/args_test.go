package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/internal/runner"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		name    string
		command string
		want    []string
	}{
		{
			name:    "plain words",
			command: "pytest tests/test_flaky.py",
			want:    []string{"pytest", "tests/test_flaky.py"},
		},
		{
			name:    "collapses whitespace",
			command: "  go \t test   ./...  ",
			want:    []string{"go", "test", "./..."},
		},
		{
			name:    "double quotes group words",
			command: `pytest -k "not slow"`,
			want:    []string{"pytest", "-k", "not slow"},
		},
		{
			name:    "single quotes keep metacharacters literal",
			command: `sh -c 'echo $ATTEMPT'`,
			want:    []string{"sh", "-c", "echo $ATTEMPT"},
		},
		{
			name:    "escaped space joins a word",
			command: `cat file\ name.txt`,
			want:    []string{"cat", "file name.txt"},
		},
		{
			name:    "empty quoted argument survives",
			command: `run "" after`,
			want:    []string{"run", "", "after"},
		},
		{
			name:    "nested quote kinds",
			command: `echo "it's fine"`,
			want:    []string{"echo", "it's fine"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runner.SplitCommand(tc.command)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitCommandErrors(t *testing.T) {
	for _, command := range []string{
		"",
		"   ",
		`echo "unterminated`,
		`echo 'unterminated`,
		`trailing \`,
	} {
		_, err := runner.SplitCommand(command)
		assert.Error(t, err, "command %q should not tokenize", command)
	}
}
