package scenario

import (
	"fmt"

	"github.com/clydemeng/walletvm/contracts/erc20"
	"github.com/clydemeng/walletvm/contracts/staking"
	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/factory"
	"github.com/clydemeng/walletvm/tracing"
	"github.com/clydemeng/walletvm/wallet"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Expected step outcomes.
const (
	ExpectOK     = "ok"
	ExpectRevert = "revert"
)

// StepResult is the outcome of one replayed step.
type StepResult struct {
	Index    int
	Op       string
	Output   string
	Err      error
	Expected bool // the outcome matched the step's expectation
	Receipt  *core.Receipt
}

// Result is the outcome of a replayed scenario.
type Result struct {
	RunID    string
	Scenario string
	Steps    []*StepResult
	Snapshot *types.LedgerSnapshot

	Contributions uint64
	RewardsPaid   *uint256.Int
}

// Mismatches counts steps whose outcome differed from the expectation.
func (r *Result) Mismatches() int {
	var n int
	for _, s := range r.Steps {
		if !s.Expected {
			n++
		}
	}
	return n
}

// Env is the deployed state a scenario runs against.
type Env struct {
	Host    *core.Host
	Factory *factory.Factory
	Token   *erc20.Token
	Vault   *staking.Vault
}

// Setup builds the host and deploys the factory and optional contracts.
func Setup(s *Scenario, hooks *tracing.Hooks) (*Env, error) {
	alloc := make(map[common.Address]*uint256.Int, len(s.Genesis.Alloc))
	for addr, amount := range s.Genesis.Alloc {
		v, err := parseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("genesis alloc %s: %w", addr, err)
		}
		alloc[common.HexToAddress(addr)] = v
	}
	host, err := core.NewHost(&core.Config{Time: s.Genesis.Time, Alloc: alloc})
	if err != nil {
		return nil, err
	}
	owner, err := parseAddress(s.Factory.Owner)
	if err != nil {
		return nil, fmt.Errorf("factory owner: %w", err)
	}
	f, err := factory.Deploy(host, owner, wallet.NewTemplate(host), &factory.Config{
		Features: s.Factory.Features,
		Version:  s.Factory.Version,
		Hooks:    hooks,
	})
	if err != nil {
		return nil, err
	}
	env := &Env{Host: host, Factory: f}

	if t := s.Token; t != nil {
		tokOwner, err := parseAddress(t.Owner)
		if err != nil {
			return nil, fmt.Errorf("token owner: %w", err)
		}
		if env.Token, err = erc20.Deploy(host, tokOwner, t.Name, t.Symbol, t.Decimals); err != nil {
			return nil, err
		}
	}
	if v := s.Staking; v != nil {
		vaultOwner, err := parseAddress(v.Owner)
		if err != nil {
			return nil, fmt.Errorf("staking owner: %w", err)
		}
		minStake, err := parseAmount(v.MinStake)
		if err != nil {
			return nil, fmt.Errorf("staking minimum: %w", err)
		}
		if env.Vault, err = staking.Deploy(host, vaultOwner, staking.Config{MinStake: minStake}); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Run replays s on a fresh environment. Step failures are part of the
// result; an error is only returned if the environment cannot be built.
func Run(s *Scenario) (*Result, error) {
	res := &Result{
		RunID:       uuid.NewString(),
		Scenario:    s.Name,
		RewardsPaid: new(uint256.Int),
	}
	// Hooks also fire for changes that are reverted later; the totals are
	// taken from the final snapshot instead.
	hooks := &tracing.Hooks{
		OnContribution: func(wallet common.Address, dataHash common.Hash, dataType uint8, reward *uint256.Int) {
			log.Trace("Contribution observed", "run", res.RunID, "wallet", wallet, "type", types.DataType(dataType), "reward", reward)
		},
	}
	env, err := Setup(s, hooks)
	if err != nil {
		return nil, err
	}
	log.Info("Replaying scenario", "name", s.Name, "run", res.RunID, "steps", len(s.Steps), "factory", env.Factory.Address())

	for i := range s.Steps {
		res.Steps = append(res.Steps, env.Apply(i, &s.Steps[i]))
	}
	res.Snapshot = env.Factory.Snapshot()
	res.Contributions = res.Snapshot.Stats.TotalContributions
	res.RewardsPaid.Set(res.Snapshot.Stats.TotalRewardsDistributed)
	return res, nil
}

// Apply executes a single step as one top-level transaction.
func (env *Env) Apply(index int, step *Step) *StepResult {
	res := &StepResult{Index: index, Op: step.Op}
	block := env.Host.Block()

	h, ok := handlers[step.Op]
	if !ok {
		res.Err = fmt.Errorf("unknown op %q", step.Op)
	} else {
		res.Output, res.Err = h(env, step)
	}
	wantRevert := step.Expect == ExpectRevert
	res.Expected = (res.Err != nil) == wantRevert

	from, _ := parseAddress(step.From)
	to, _ := parseAddress(step.To)
	res.Receipt = &core.Receipt{
		From:        from,
		To:          to,
		Status:      gethtypes.ReceiptStatusSuccessful,
		ReturnData:  []byte(res.Output),
		BlockNumber: block.Number,
		Time:        block.Time,
	}
	if res.Err != nil {
		res.Receipt.Status = gethtypes.ReceiptStatusFailed
		res.Receipt.Err = res.Err.Error()
	}
	if !res.Expected {
		log.Warn("Unexpected step outcome", "index", index, "op", step.Op, "expect", step.Expect, "err", res.Err)
	} else {
		log.Debug("Applied step", "index", index, "op", step.Op, "output", res.Output, "err", res.Err)
	}
	return res
}

// wallet resolves the wallet owned by owner.
func (env *Env) wallet(owner common.Address) (*wallet.Wallet, error) {
	addr, ok := env.Factory.GetWallet(owner)
	if !ok {
		return nil, fmt.Errorf("%w: %s", factory.ErrNoWallet, owner)
	}
	obj, ok := env.Host.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", factory.ErrInstanceUnavailable, addr)
	}
	w, ok := obj.(*wallet.Wallet)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", factory.ErrInstanceUnavailable, addr, obj)
	}
	return w, nil
}
