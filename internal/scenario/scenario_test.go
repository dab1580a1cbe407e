package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	admin = common.HexToAddress("0x00000000000000000000000000000000000ad111")
	alice = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	dave  = common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	s, err := Load("testdata/ledger.toml")
	require.NoError(t, err)
	require.Equal(t, "ledger", s.Name)
	require.Equal(t, uint64(1700000000), s.Genesis.Time)
	require.Equal(t, "1000000", s.Genesis.Alloc["0x00000000000000000000000000000000000ad111"])
	require.Len(t, s.Steps, 9)
	require.Equal(t, "fundPool", s.Steps[0].Op)
	require.Equal(t, []string{"basic_transactions"}, s.Steps[1].Features)
	require.Equal(t, ExpectRevert, s.Steps[2].Expect)
	require.Equal(t, uint8(3), s.Steps[4].DataType)
}

func TestLoadYAML(t *testing.T) {
	s, err := Load("testdata/recovery.yaml")
	require.NoError(t, err)
	require.Equal(t, "recovery", s.Name)
	require.NotNil(t, s.Token)
	require.Equal(t, "STK", s.Token.Symbol)
	require.Equal(t, uint8(18), s.Token.Decimals)
	require.NotNil(t, s.Staking)
	require.Equal(t, "100", s.Staking.MinStake)
	require.Len(t, s.Steps[1].Guardians, 2)
	require.Equal(t, "48h", s.Steps[4].Duration)
}

func TestLoadDefaultsName(t *testing.T) {
	path := writeFile(t, "unnamed.toml", `
[Factory]
Owner = "0x00000000000000000000000000000000000ad111"
`)
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "unnamed", s.Name)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
Factory:
  Owner: "0x00000000000000000000000000000000000ad111"
Bogus: 1
`)
	_, err := Load(path)
	require.Error(t, err)

	path = writeFile(t, "bad.toml", `
Bogus = 1
[Factory]
Owner = "0x00000000000000000000000000000000000ad111"
`)
	_, err = Load(path)
	require.ErrorContains(t, err, "Bogus")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
	}{
		{"owner", Scenario{Factory: FactoryConfig{Owner: "nope"}}},
		{"alloc address", Scenario{
			Factory: FactoryConfig{Owner: admin.Hex()},
			Genesis: GenesisConfig{Alloc: map[string]string{"nope": "1"}},
		}},
		{"alloc amount", Scenario{
			Factory: FactoryConfig{Owner: admin.Hex()},
			Genesis: GenesisConfig{Alloc: map[string]string{admin.Hex(): "lots"}},
		}},
		{"op", Scenario{
			Factory: FactoryConfig{Owner: admin.Hex()},
			Steps:   []Step{{Op: "selfdestruct"}},
		}},
		{"expect", Scenario{
			Factory: FactoryConfig{Owner: admin.Hex()},
			Steps:   []Step{{Op: "advanceTime", Expect: "maybe"}},
		}},
	}
	for _, tt := range tests {
		require.Error(t, tt.scenario.Validate(), tt.name)
	}
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("")
	require.NoError(t, err)
	require.True(t, v.IsZero())

	v, err = parseAmount("1000")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v.Uint64())

	v, err = parseAmount("0x3e8")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v.Uint64())

	_, err = parseAmount("-1")
	require.Error(t, err)
}
