package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confutils-worker/services/errs"
)

func TestValidateServiceName(t *testing.T) {
	name, err := ValidateServiceName("  Windows Update_svc-1 ")
	require.NoError(t, err)
	assert.Equal(t, "Windows Update_svc-1", name)

	for _, bad := range []string{"", "   ", "wuauserv;calc", `svc"x`, strings.Repeat("a", 257)} {
		_, err := ValidateServiceName(bad)
		assert.True(t, errs.Is(err, errs.InvalidInput), "input %q", bad)
	}

	_, err = ValidateServiceName(strings.Repeat("a", 256))
	assert.NoError(t, err)
}

func TestValidateProcessID(t *testing.T) {
	_, err := ValidateProcessID(0)
	assert.True(t, errs.Is(err, errs.InvalidInput))

	_, err = ValidateProcessID(4)
	assert.True(t, errs.Is(err, errs.SecurityViolation))

	_, err = ValidateProcessID(1)
	assert.True(t, errs.Is(err, errs.SecurityViolation))

	pid, err := ValidateProcessID(1000)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), pid)
}

func TestFilePolicyValidate(t *testing.T) {
	p := FilePolicy{Roots: []string{`C:\Users\alice`, `C:\ProgramData`, `C:\Windows\Temp`}}

	for _, ok := range []string{
		`C:\Users\alice\Documents\secret.txt`,
		`c:\users\ALICE\file.bin`,
		`C:/ProgramData/app/log.txt`,
		`C:\Windows\Temp`,
		`relative\file.txt`,
	} {
		_, err := p.Validate(ok)
		assert.NoError(t, err, ok)
	}

	for _, bad := range []string{
		`C:\Users\alice\..\bob\file.txt`,
		`C://Windows/System32`,
		`C:\Windows\System32\drivers\etc\hosts`,
		`C:\Users\alicemallory\file.txt`,
		`\\server\share\file.txt`,
	} {
		_, err := p.Validate(bad)
		assert.True(t, errs.Is(err, errs.SecurityViolation), bad)
	}

	_, err := p.Validate("")
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestValidateRegistryPath(t *testing.T) {
	_, err := ValidateRegistryPath(`HKLM:\SOFTWARE\Test`)
	assert.NoError(t, err)

	_, err = ValidateRegistryPath(`hkcu:\Software\Test`)
	assert.NoError(t, err)

	_, err = ValidateRegistryPath(`C:\SOFTWARE\Test`)
	assert.True(t, errs.Is(err, errs.InvalidInput))

	_, err = ValidateRegistryPath(`HKLM:\..\Test`)
	assert.True(t, errs.Is(err, errs.SecurityViolation))
}

func TestValidateDiscordID(t *testing.T) {
	_, err := ValidateDiscordID("123456789012345")
	assert.NoError(t, err)

	for _, bad := range []string{"abc123", "", "123456789012345678901", "12 34"} {
		_, err := ValidateDiscordID(bad)
		assert.True(t, errs.Is(err, errs.InvalidInput), bad)
	}
}

func TestValidateDiscordToken(t *testing.T) {
	good := strings.Repeat("x", 59)
	token, err := ValidateDiscordToken("  " + good + " ")
	require.NoError(t, err)
	assert.Equal(t, good, token)

	for _, bad := range []string{
		"",
		strings.Repeat("x", 49),
		strings.Repeat("x", 201),
		good + "\n",
		good[:30] + "\r" + good[30:],
		good + "\x00",
	} {
		_, err := ValidateDiscordToken(bad)
		assert.True(t, errs.Is(err, errs.InvalidInput))
	}
}

func TestValidateStartupTypeAndRegistryValue(t *testing.T) {
	_, err := ValidateStartupType("Manual")
	assert.NoError(t, err)
	_, err = ValidateStartupType("manual")
	assert.Error(t, err)

	_, err = ValidateRegistryValue(strings.Repeat("v", 10001))
	assert.True(t, errs.Is(err, errs.InvalidInput))

	_, err = ValidateRegistryValueName("Value\n")
	assert.NoError(t, err, "trailing whitespace is trimmed")
	_, err = ValidateRegistryValueName("Val\x01ue")
	assert.Error(t, err)
}

func TestValidationResultErr(t *testing.T) {
	assert.NoError(t, (&ValidationResult{Valid: true}).Err())

	err := (&ValidationResult{Kind: errs.SecurityViolation, Reason: "backtick"}).Err()
	assert.True(t, errs.Is(err, errs.SecurityViolation))
	assert.Contains(t, err.Error(), "backtick")
}

func TestValidateBlocklist(t *testing.T) {
	key, err := ValidateBlocklist(" ADS ")
	require.NoError(t, err)
	assert.Equal(t, "ads", key)

	key, err = ValidateBlocklist("telemetry")
	require.NoError(t, err)
	assert.Equal(t, "telemetry", key)

	_, err = ValidateBlocklist("malware")
	assert.True(t, errs.Is(err, errs.InvalidInput))
}
