package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
)

// resetFlags restores every flag of fs to its default value.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, env := range []string{"BRANCH", "BRANCH_NAME", "GITREF"} {
		t.Setenv(env, "")
	}
	resetFlags(rootCmd.PersistentFlags())
	resetFlags(rootCmd.Flags())
	resetFlags(remoteCmd.Flags())

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
