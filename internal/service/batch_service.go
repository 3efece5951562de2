package service

import (
	"context"

	"go.uber.org/zap"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/pkg/errno"
	"smartwallet-core/pkg/logger"
	"smartwallet-core/pkg/monitor"
)

// SendRequest is the tagged union over the two submission variants: a
// batched on-chain send and a direct payment-channel top-up.
type SendRequest interface {
	sendRequest()
}

// OnChainBatchSend submits the transactions as one atomic gateway batch.
// Order is preserved; intents may depend on earlier ones (approve-then-
// transfer), which the gateway executes in sequence.
type OnChainBatchSend struct {
	Transactions []gateway.TransactionIntent
	FeeToken     string // optional token to pay gateway fees in
}

// PeerToPeerSend tops up a payment channel to the recipient directly,
// bypassing the batch pipeline entirely.
type PeerToPeerSend struct {
	Recipient string
	Token     string // empty means native currency
	Value     string // base units
}

func (OnChainBatchSend) sendRequest() {}
func (PeerToPeerSend) sendRequest()   {}

// sendState tracks the batch pipeline through its fixed sequence. The
// pending batch lives on the gateway, so the sequence must never reorder:
// a stale remote batch is only guaranteed gone after Cleared.
type sendState int

const (
	sendIdle sendState = iota
	sendCleared
	sendPopulated
	sendEstimated
	sendSubmitted
)

func (s sendState) String() string {
	switch s {
	case sendIdle:
		return "idle"
	case sendCleared:
		return "cleared"
	case sendPopulated:
		return "populated"
	case sendEstimated:
		return "estimated"
	case sendSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// BatchService drives the gateway's pending batch through
// clear → append → estimate → submit. It performs no retries and no
// locking; callers serialize sends per account.
type BatchService struct {
	gw gateway.Gateway
}

func NewBatchService(gw gateway.Gateway) *BatchService {
	return &BatchService{gw: gw}
}

// Send dispatches on the request variant. Both paths return the gateway
// hash of the accepted submission.
func (s *BatchService) Send(ctx context.Context, req SendRequest) (*gateway.SubmittedBatch, error) {
	switch r := req.(type) {
	case OnChainBatchSend:
		return s.sendBatch(ctx, r)
	case PeerToPeerSend:
		return s.sendPayment(ctx, r)
	default:
		return nil, errno.InternalServerError
	}
}

// Estimate asks the gateway for the cost of the currently accumulated
// batch. A nil estimate means "unknown cost", not failure. Calling this
// before every intended transaction has been appended silently estimates
// a smaller batch.
func (s *BatchService) Estimate(ctx context.Context, feeToken string) (*gateway.BatchEstimate, error) {
	return s.gw.EstimateBatch(ctx, feeToken)
}

// sendBatch runs the strict submission sequence. Append failures abort
// the send before estimate or submit; estimate failures do not abort,
// since the gateway computes the final cost at submission time anyway.
func (s *BatchService) sendBatch(ctx context.Context, req OnChainBatchSend) (*gateway.SubmittedBatch, error) {
	state := sendIdle

	// A failed append from an earlier send leaves the remote batch
	// partially populated, so the reset always runs first.
	if err := s.gw.ClearBatch(ctx); err != nil {
		logger.Error("sendBatch clearBatch failed", zap.String("state", state.String()), zap.Error(err))
		s.observeSubmission("failure", len(req.Transactions))
		return nil, errno.ErrGatewayTransport
	}
	state = sendCleared

	for i, tx := range req.Transactions {
		if err := s.gw.AppendToBatch(ctx, tx); err != nil {
			logger.Error("sendBatch append failed",
				zap.String("state", state.String()),
				zap.Int("position", i),
				zap.String("to", tx.To),
				zap.Error(err))
			s.observeSubmission("failure", len(req.Transactions))
			return nil, errno.ErrBatchAppend
		}
	}
	state = sendPopulated

	// Informational only; fee selection happens gateway-side on submit.
	estimate, err := s.gw.EstimateBatch(ctx, req.FeeToken)
	if err != nil {
		logger.Warn("sendBatch estimate failed, submitting anyway",
			zap.String("state", state.String()), zap.Error(err))
	} else if estimate != nil {
		state = sendEstimated
		logger.Debug("sendBatch estimated",
			zap.String("feeAmount", estimate.FeeAmount),
			zap.String("feeToken", estimate.FeeToken))
	}

	submitted, err := s.gw.SubmitBatch(ctx)
	if err != nil {
		logger.Error("sendBatch submit failed", zap.String("state", state.String()), zap.Error(err))
		s.observeSubmission("failure", len(req.Transactions))
		return nil, errno.ErrBatchSubmit
	}
	state = sendSubmitted

	logger.Info("batch submitted",
		zap.String("hash", submitted.Hash),
		zap.Int("transactions", len(req.Transactions)))
	s.observeSubmission("success", len(req.Transactions))
	return submitted, nil
}

// sendPayment is the peer-to-peer variant: one direct gateway call, same
// return contract as the batch path.
func (s *BatchService) sendPayment(ctx context.Context, req PeerToPeerSend) (*gateway.SubmittedBatch, error) {
	submitted, err := s.gw.IncreasePaymentChannelAmount(ctx, gateway.IncreasePaymentChannelRequest{
		Recipient: req.Recipient,
		Token:     req.Token,
		Value:     req.Value,
	})
	if err != nil {
		logger.Error("sendPayment increasePaymentChannelAmount failed",
			zap.String("recipient", req.Recipient), zap.Error(err))
		s.observeSubmission("failure", 1)
		return nil, errno.ErrBatchSubmit
	}

	logger.Info("payment channel topped up",
		zap.String("hash", submitted.Hash),
		zap.String("recipient", req.Recipient))
	s.observeSubmission("success", 1)
	return submitted, nil
}

func (s *BatchService) observeSubmission(result string, size int) {
	if monitor.Business == nil {
		return
	}
	monitor.Business.BatchSubmittedTotal.WithLabelValues(result).Inc()
	if result == "success" {
		monitor.Business.BatchSizeObserved.Observe(float64(size))
	}
}
