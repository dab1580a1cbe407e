package wallet

import (
	"fmt"
	"slices"
	"time"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// RecoveryTimelock is the delay between initiating and finalizing a
// recovery.
const RecoveryTimelock = 2 * 24 * time.Hour

// RecoveryRequest is a pending ownership recovery.
type RecoveryRequest struct {
	NewOwner    common.Address
	Initiator   common.Address
	InitiatedAt uint64
}

// ReadyAt returns the earliest time the request can be finalized.
func (r *RecoveryRequest) ReadyAt() uint64 {
	return r.InitiatedAt + uint64(RecoveryTimelock/time.Second)
}

// SetupRecovery replaces the guardian set and threshold.
func (w *Wallet) SetupRecovery(fr *core.Frame, guardians []common.Address, threshold uint64) error {
	if err := w.onlyOwner(fr); err != nil {
		return err
	}
	if _, err := w.requireFeature(types.FeatureSocialRecovery); err != nil {
		return err
	}
	return w.configureGuardians(fr, guardians, threshold)
}

func (w *Wallet) configureGuardians(fr *core.Frame, guardians []common.Address, threshold uint64) error {
	set := mapset.NewThreadUnsafeSet[common.Address]()
	for _, g := range guardians {
		if g == (common.Address{}) {
			return fmt.Errorf("%w: zero address", ErrInvalidGuardian)
		}
		if g == w.owner {
			return fmt.Errorf("%w: owner %s", ErrInvalidGuardian, g)
		}
		set.Add(g)
	}
	if threshold == 0 || threshold > uint64(set.Cardinality()) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, threshold, set.Cardinality())
	}
	core.Set(fr, &w.guardians, set)
	core.Set(fr, &w.threshold, threshold)

	log.Info("Configured recovery guardians", "wallet", w.address, "guardians", set.Cardinality(), "threshold", threshold)
	return nil
}

// InitiateRecovery starts handing the wallet to newOwner. Only a guardian
// may call it; a new request replaces any pending one.
func (w *Wallet) InitiateRecovery(fr *core.Frame, newOwner common.Address) error {
	if err := fr.Bind(w.address); err != nil {
		return err
	}
	if !w.initialized {
		return ErrNotInitialized
	}
	if _, err := w.requireFeature(types.FeatureSocialRecovery); err != nil {
		return err
	}
	if !w.guardians.Contains(fr.Caller()) {
		return fmt.Errorf("%w: %s", ErrNotGuardian, fr.Caller())
	}
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner", ErrZeroAddress)
	}
	req := &RecoveryRequest{
		NewOwner:    newOwner,
		Initiator:   fr.Caller(),
		InitiatedAt: fr.Now(),
	}
	core.Set(fr, &w.pending, req)

	log.Warn("Recovery initiated", "wallet", w.address, "guardian", req.Initiator, "newOwner", newOwner, "readyAt", req.ReadyAt())
	return nil
}

// FinalizeRecovery completes a pending recovery once the timelock has
// elapsed. Anyone may call it.
func (w *Wallet) FinalizeRecovery(fr *core.Frame) error {
	if err := fr.Bind(w.address); err != nil {
		return err
	}
	if !w.initialized {
		return ErrNotInitialized
	}
	req := w.pending
	if req == nil {
		return ErrNoPendingRecovery
	}
	if now := fr.Now(); now < req.ReadyAt() {
		return fmt.Errorf("%w: ready at %d, now %d", ErrTimelockNotMet, req.ReadyAt(), now)
	}
	prev := w.owner
	core.Set(fr, &w.owner, req.NewOwner)
	core.Set(fr, &w.pending, nil)
	recoveryMeter.Mark(1)

	log.Warn("Recovery finalized", "wallet", w.address, "from", prev, "to", req.NewOwner)
	return nil
}

// CancelRecovery drops a pending recovery. Only the owner may call it.
func (w *Wallet) CancelRecovery(fr *core.Frame) error {
	if err := w.onlyOwner(fr); err != nil {
		return err
	}
	if w.pending == nil {
		return ErrNoPendingRecovery
	}
	core.Set(fr, &w.pending, nil)
	log.Info("Recovery cancelled", "wallet", w.address)
	return nil
}

// PendingRecovery returns the pending recovery, if any.
func (w *Wallet) PendingRecovery() (RecoveryRequest, bool) {
	if w.pending == nil {
		return RecoveryRequest{}, false
	}
	return *w.pending, true
}

// Guardians returns the guardian set in address order.
func (w *Wallet) Guardians() []common.Address {
	gs := w.guardians.ToSlice()
	slices.SortFunc(gs, common.Address.Cmp)
	return gs
}

// RecoveryConfig returns the guardian set with its threshold.
func (w *Wallet) RecoveryConfig() RecoveryConfig {
	return RecoveryConfig{Guardians: w.Guardians(), Threshold: w.threshold}
}

// IsGuardian reports whether addr is a guardian.
func (w *Wallet) IsGuardian(addr common.Address) bool {
	return w.guardians.Contains(addr)
}

// Threshold returns the configured guardian threshold.
func (w *Wallet) Threshold() uint64 { return w.threshold }
