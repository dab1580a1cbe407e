// Package scenario loads and replays scripted walletvm sessions: a genesis,
// a factory deployment and an ordered list of top-level transactions.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// Scenario is a replayable session.
type Scenario struct {
	Name    string         `yaml:"Name"`
	Genesis GenesisConfig  `yaml:"Genesis"`
	Factory FactoryConfig  `yaml:"Factory"`
	Token   *TokenConfig   `yaml:"Token"`
	Staking *StakingConfig `yaml:"Staking"`
	Steps   []Step         `yaml:"Steps"`
}

// GenesisConfig configures the host.
type GenesisConfig struct {
	Time  uint64            `yaml:"Time"`
	Alloc map[string]string `yaml:"Alloc"` // address -> decimal or 0x amount
}

// FactoryConfig configures the factory deployment.
type FactoryConfig struct {
	Owner    string   `yaml:"Owner"`
	Features []string `yaml:"Features"`
	Version  uint64   `yaml:"Version"`
}

// TokenConfig deploys a reference token owned by Owner.
type TokenConfig struct {
	Owner    string `yaml:"Owner"`
	Name     string `yaml:"Name"`
	Symbol   string `yaml:"Symbol"`
	Decimals uint8  `yaml:"Decimals"`
}

// StakingConfig deploys a staking vault.
type StakingConfig struct {
	Owner    string `yaml:"Owner"`
	MinStake string `yaml:"MinStake"`
}

// Step is one top-level transaction. Which fields are read depends on Op.
type Step struct {
	Op     string `yaml:"Op"`
	From   string `yaml:"From"`
	Wallet string `yaml:"Wallet"` // owner whose wallet is targeted, defaults to From
	To     string `yaml:"To"`
	Value  string `yaml:"Value"`
	Data   string `yaml:"Data"`

	Features  []string `yaml:"Features"`
	Configs   []string `yaml:"Configs"`
	Feature   string   `yaml:"Feature"`
	Config    string   `yaml:"Config"`
	Available bool     `yaml:"Available"`

	DataType  uint8    `yaml:"DataType"`
	ChainID   uint64   `yaml:"ChainID"`
	Strategy  string   `yaml:"Strategy"`
	Guardians []string `yaml:"Guardians"`
	Threshold uint64   `yaml:"Threshold"`
	Amount    string   `yaml:"Amount"`
	Duration  string   `yaml:"Duration"`

	// Expect is "ok" (the default) or "revert".
	Expect string `yaml:"Expect"`
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads a scenario from a .toml, .yaml or .yml file.
func Load(file string) (*Scenario, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := new(Scenario)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bufio.NewReader(f))
		dec.KnownFields(true)
		err = dec.Decode(s)
	default:
		err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(s)
		// Add file name to errors that have a line number.
		if _, ok := err.(*toml.LineError); ok {
			err = errors.New(file + ", " + err.Error())
		}
	}
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return s, s.Validate()
}

// Validate checks the static parts of a scenario.
func (s *Scenario) Validate() error {
	if _, err := parseAddress(s.Factory.Owner); err != nil {
		return fmt.Errorf("factory owner: %w", err)
	}
	for addr, amount := range s.Genesis.Alloc {
		if _, err := parseAddress(addr); err != nil {
			return fmt.Errorf("genesis alloc: %w", err)
		}
		if _, err := parseAmount(amount); err != nil {
			return fmt.Errorf("genesis alloc %s: %w", addr, err)
		}
	}
	for i, step := range s.Steps {
		if _, ok := handlers[step.Op]; !ok {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		switch step.Expect {
		case "", ExpectOK, ExpectRevert:
		default:
			return fmt.Errorf("step %d: unknown expectation %q", i, step.Expect)
		}
	}
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount accepts decimal or 0x-prefixed hex. The empty string is zero.
func parseAmount(s string) (*uint256.Int, error) {
	switch {
	case s == "":
		return new(uint256.Int), nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		return uint256.FromHex(s)
	default:
		return uint256.FromDecimal(s)
	}
}

// parseBytes decodes 0x-prefixed hex. The empty string is nil.
func parseBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hexutil.Decode(s)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, errors.New("missing duration")
	}
	return time.ParseDuration(s)
}
