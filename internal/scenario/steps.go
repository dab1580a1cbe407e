package scenario

import (
	"errors"
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	errNoToken = errors.New("scenario deploys no token")
	errNoVault = errors.New("scenario deploys no staking vault")
)

// handler executes one step and returns a short description of its output.
type handler func(env *Env, st *Step) (string, error)

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		// Factory ledger
		"createWallet":           createWallet,
		"activateFeature":        factoryCall(activateFeature),
		"registerFeature":        factoryCall(registerFeature),
		"setFeatureAvailability": factoryCall(setFeatureAvailability),
		"fundPool":               factoryCall(fundPool),
		"withdrawPool":           factoryCall(withdrawPool),
		"deactivateWallet":       factoryCall(deactivateWallet),
		"setScore":               factoryCall(setScore),
		"upgradeWallet":          factoryCall(upgradeWallet),
		"transferOwnership":      factoryCall(transferOwnership),

		// Wallet instance
		"execute":           walletCall(execute),
		"contribute":        walletCall(contribute),
		"defi":              walletCall(defi),
		"crossChain":        walletCall(crossChain),
		"configureStrategy": walletCall(configureStrategy),
		"aiStrategy":        walletCall(aiStrategy),
		"setupRecovery":     walletCall(setupRecovery),
		"initiateRecovery":  walletCall(initiateRecovery),
		"finalizeRecovery":  walletCall(finalizeRecovery),
		"cancelRecovery":    walletCall(cancelRecovery),
		"stake":             walletCall(stake),

		// Environment
		"mintToken":    mintToken,
		"approveToken": approveToken,
		"transfer":     transfer,
		"advanceTime":  advanceTime,
	}
}

// factoryCall runs fn as a transaction from the step sender to the factory.
func factoryCall(fn func(env *Env, st *Step, fr *core.Frame) (string, error)) handler {
	return func(env *Env, st *Step) (string, error) {
		from, err := parseAddress(st.From)
		if err != nil {
			return "", err
		}
		value, err := parseAmount(st.Value)
		if err != nil {
			return "", err
		}
		var out string
		err = env.Host.Transact(from, env.Factory.Address(), value, func(fr *core.Frame) (err error) {
			out, err = fn(env, st, fr)
			return err
		})
		return out, err
	}
}

// walletCall runs fn as a transaction from the step sender to the wallet of
// st.Wallet, or of the sender if unset.
func walletCall(fn func(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error)) handler {
	return func(env *Env, st *Step) (string, error) {
		from, err := parseAddress(st.From)
		if err != nil {
			return "", err
		}
		w, err := env.targetWallet(st)
		if err != nil {
			return "", err
		}
		var out string
		err = env.Host.Transact(from, w.Address(), nil, func(fr *core.Frame) (err error) {
			out, err = fn(w, env, st, fr)
			return err
		})
		return out, err
	}
}

func (env *Env) targetWallet(st *Step) (*wallet.Wallet, error) {
	owner := st.Wallet
	if owner == "" {
		owner = st.From
	}
	addr, err := parseAddress(owner)
	if err != nil {
		return nil, err
	}
	return env.wallet(addr)
}

// recipient is st.To, or the target wallet when To is unset.
func (env *Env) recipient(st *Step) (common.Address, error) {
	if st.To != "" {
		return parseAddress(st.To)
	}
	w, err := env.targetWallet(st)
	if err != nil {
		return common.Address{}, err
	}
	return w.Address(), nil
}

func createWallet(env *Env, st *Step) (string, error) {
	from, err := parseAddress(st.From)
	if err != nil {
		return "", err
	}
	configs := make([][]byte, len(st.Features))
	if st.Configs != nil {
		configs = make([][]byte, len(st.Configs))
		for i, c := range st.Configs {
			if configs[i], err = parseBytes(c); err != nil {
				return "", fmt.Errorf("config %d: %w", i, err)
			}
		}
	}
	var addr common.Address
	err = env.Host.Transact(from, env.Factory.Address(), nil, func(fr *core.Frame) (err error) {
		addr, err = env.Factory.CreateWallet(fr, st.Features, configs)
		return err
	})
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

func activateFeature(env *Env, st *Step, fr *core.Frame) (string, error) {
	config, err := parseBytes(st.Config)
	if err != nil {
		return "", err
	}
	return st.Feature, env.Factory.ActivateFeature(fr, st.Feature, config)
}

func registerFeature(env *Env, st *Step, fr *core.Frame) (string, error) {
	return st.Feature, env.Factory.RegisterFeature(fr, st.Feature)
}

func setFeatureAvailability(env *Env, st *Step, fr *core.Frame) (string, error) {
	return fmt.Sprintf("%s=%t", st.Feature, st.Available), env.Factory.SetFeatureAvailability(fr, st.Feature, st.Available)
}

func fundPool(env *Env, st *Step, fr *core.Frame) (string, error) {
	if err := env.Factory.FundRewardPool(fr); err != nil {
		return "", err
	}
	return "pool=" + env.Factory.RewardPool().Dec(), nil
}

func withdrawPool(env *Env, st *Step, fr *core.Frame) (string, error) {
	amount, err := parseAmount(st.Amount)
	if err != nil {
		return "", err
	}
	if err := env.Factory.WithdrawFromPool(fr, amount); err != nil {
		return "", err
	}
	return "pool=" + env.Factory.RewardPool().Dec(), nil
}

func deactivateWallet(env *Env, st *Step, fr *core.Frame) (string, error) {
	w, err := env.targetWallet(st)
	if err != nil {
		return "", err
	}
	return w.Address().Hex(), env.Factory.DeactivateWallet(fr, w.Address())
}

func setScore(env *Env, st *Step, fr *core.Frame) (string, error) {
	w, err := env.targetWallet(st)
	if err != nil {
		return "", err
	}
	score, err := parseAmount(st.Amount)
	if err != nil {
		return "", err
	}
	return "score=" + score.Dec(), env.Factory.SetContributionScore(fr, w.Address(), score)
}

func upgradeWallet(env *Env, st *Step, fr *core.Frame) (string, error) {
	return fmt.Sprintf("version=%d", env.Factory.Version()), env.Factory.UpgradeWallet(fr)
}

func transferOwnership(env *Env, st *Step, fr *core.Frame) (string, error) {
	to, err := parseAddress(st.To)
	if err != nil {
		return "", err
	}
	return to.Hex(), env.Factory.TransferOwnership(fr, to)
}

func execute(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	to, err := parseAddress(st.To)
	if err != nil {
		return "", err
	}
	value, err := parseAmount(st.Value)
	if err != nil {
		return "", err
	}
	data, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	ok, ret, err := w.ExecuteTransaction(fr, to, value, data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("success=%t ret=%s", ok, hexutil.Encode(ret)), nil
}

func contribute(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	data, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	reward, err := w.ContributeData(fr, crypto.Keccak256Hash(data), types.DataType(st.DataType), data)
	if err != nil {
		return "", err
	}
	return "reward=" + reward.Dec(), nil
}

func defi(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	protocol, err := parseAddress(st.To)
	if err != nil {
		return "", err
	}
	data, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	ret, err := w.InteractWithDeFi(fr, protocol, data)
	if err != nil {
		return "", err
	}
	return "ret=" + hexutil.Encode(ret), nil
}

func crossChain(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	data, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	id, err := w.InitiateCrossChain(fr, st.ChainID, data)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func configureStrategy(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	params, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	return st.Strategy, w.ConfigureStrategy(fr, st.Strategy, params)
}

func aiStrategy(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	input, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	out, err := w.ExecuteAIStrategy(fr, st.Strategy, input)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(out), nil
}

func setupRecovery(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	guardians := make([]common.Address, len(st.Guardians))
	for i, g := range st.Guardians {
		addr, err := parseAddress(g)
		if err != nil {
			return "", fmt.Errorf("guardian %d: %w", i, err)
		}
		guardians[i] = addr
	}
	return fmt.Sprintf("%d of %d", st.Threshold, len(guardians)), w.SetupRecovery(fr, guardians, st.Threshold)
}

func initiateRecovery(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	newOwner, err := parseAddress(st.To)
	if err != nil {
		return "", err
	}
	if err := w.InitiateRecovery(fr, newOwner); err != nil {
		return "", err
	}
	req, _ := w.PendingRecovery()
	return fmt.Sprintf("readyAt=%d", req.ReadyAt()), nil
}

func finalizeRecovery(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	if err := w.FinalizeRecovery(fr); err != nil {
		return "", err
	}
	return "owner=" + w.Owner().Hex(), nil
}

func cancelRecovery(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	return "", w.CancelRecovery(fr)
}

func stake(w *wallet.Wallet, env *Env, st *Step, fr *core.Frame) (string, error) {
	if env.Token == nil {
		return "", errNoToken
	}
	if env.Vault == nil {
		return "", errNoVault
	}
	amount, err := parseAmount(st.Amount)
	if err != nil {
		return "", err
	}
	if err := w.Stake(fr, env.Token.Address(), env.Vault.Address(), amount); err != nil {
		return "", err
	}
	return "staked=" + w.StakedBalance(env.Token.Address()).Dec(), nil
}

func mintToken(env *Env, st *Step) (string, error) {
	if env.Token == nil {
		return "", errNoToken
	}
	from, err := parseAddress(st.From)
	if err != nil {
		return "", err
	}
	to, err := env.recipient(st)
	if err != nil {
		return "", err
	}
	amount, err := parseAmount(st.Amount)
	if err != nil {
		return "", err
	}
	err = env.Host.Transact(from, env.Token.Address(), nil, func(fr *core.Frame) error {
		return env.Token.Mint(fr, to, amount)
	})
	return "balance=" + env.Token.BalanceOf(to).Dec(), err
}

func approveToken(env *Env, st *Step) (string, error) {
	if env.Token == nil {
		return "", errNoToken
	}
	from, err := parseAddress(st.From)
	if err != nil {
		return "", err
	}
	spender, err := env.recipient(st)
	if err != nil {
		return "", err
	}
	amount, err := parseAmount(st.Amount)
	if err != nil {
		return "", err
	}
	err = env.Host.Transact(from, env.Token.Address(), nil, func(fr *core.Frame) error {
		return env.Token.Approve(fr, spender, amount)
	})
	return "spender=" + spender.Hex(), err
}

func transfer(env *Env, st *Step) (string, error) {
	from, err := parseAddress(st.From)
	if err != nil {
		return "", err
	}
	to, err := env.recipient(st)
	if err != nil {
		return "", err
	}
	value, err := parseAmount(st.Value)
	if err != nil {
		return "", err
	}
	data, err := parseBytes(st.Data)
	if err != nil {
		return "", err
	}
	receipt, err := env.Host.ApplyMessage(&core.Message{From: from, To: to, Value: value, Data: data})
	if err != nil {
		return "", err
	}
	if !receipt.Succeeded() {
		return "", errors.New(receipt.Err)
	}
	return "balance=" + env.Host.Balance(to).Dec(), nil
}

func advanceTime(env *Env, st *Step) (string, error) {
	d, err := parseDuration(st.Duration)
	if err != nil {
		return "", err
	}
	env.Host.AdvanceTime(d)
	return fmt.Sprintf("time=%d", env.Host.Time()), nil
}
