package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"validate", "serve", "runs"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "zsj-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_BatchFlags(t *testing.T) {
	for _, name := range []string{"points", "geocode", "merge", "input", "output", "district", "sheet"} {
		require.NotNil(t, rootCmd.Flags().Lookup(name), "root command should have --%s flag", name)
	}
	assert.Equal(t, "false", rootCmd.Flags().Lookup("points").DefValue)
	assert.Equal(t, "o", rootCmd.Flags().Lookup("output").Shorthand)
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCommand_DistrictRepeatable(t *testing.T) {
	fs := rootCmd.Flags()
	t.Cleanup(func() { batchFlags.Districts = nil })
	require.NoError(t, fs.Set("district", "Ružinov"))
	require.NoError(t, fs.Set("district", "Petržalka"))
	assert.Equal(t, []string{"Ružinov", "Petržalka"}, batchFlags.Districts)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestValidateCommand_Flags(t *testing.T) {
	require.NotNil(t, validateCmd.Flags().Lookup("bbox"))
	require.NotNil(t, validateCmd.Flags().Lookup("json"))
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
}
