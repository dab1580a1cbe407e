package core

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Contract is implemented by hosted code that accepts opaque calls. The
// payload is not interpreted by the host.
type Contract interface {
	Run(fr *Frame, input []byte) ([]byte, error)
}

// Message is a top-level opaque call submitted to the host.
type Message struct {
	From  common.Address
	To    common.Address
	Value *uint256.Int
	Data  []byte
}

// Receipt is the outcome of an applied Message. A failed call still produces
// a receipt; its effects are reverted and Err carries the reason.
type Receipt struct {
	From        common.Address
	To          common.Address
	Status      uint64 // types.ReceiptStatusSuccessful or types.ReceiptStatusFailed
	ReturnData  []byte
	Err         string
	BlockNumber uint64
	Time        uint64
}

// Succeeded reports whether the call succeeded.
func (r *Receipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// TxExecutor is an abstraction over a backend able to apply opaque messages.
// Tooling drives the host through it so that alternative substrates can be
// substituted.
type TxExecutor interface {
	// Engine returns a short human identifier of the backend.
	Engine() string

	// ApplyMessage executes msg as one top-level transaction.
	ApplyMessage(msg *Message) (*Receipt, error)
}

var errNilMessage = errors.New("nil message")

// Engine implements TxExecutor.
func (h *Host) Engine() string { return "walletvm-host" }

// ApplyMessage implements TxExecutor. The call's own failure is reported in
// the receipt; an error is only returned for malformed messages.
func (h *Host) ApplyMessage(msg *Message) (*Receipt, error) {
	if msg == nil {
		return nil, errNilMessage
	}
	receipt := &Receipt{From: msg.From, To: msg.To, Status: types.ReceiptStatusSuccessful}
	err := h.Transact(msg.From, msg.From, nil, func(fr *Frame) error {
		receipt.BlockNumber, receipt.Time = h.block.Number, h.block.Time

		ret, err := fr.Call(msg.To, msg.Value, msg.Data)
		receipt.ReturnData = ret
		if err != nil {
			receipt.Status = types.ReceiptStatusFailed
			receipt.Err = err.Error()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
