package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/model"
	"smartwallet-core/pkg/assets"
	"smartwallet-core/pkg/logger"
	"smartwallet-core/pkg/monitor"
)

// ReconcileService turns the gateway's payment-channel view into local
// history records. Channels change state remotely (opened, committed,
// settled) without the wallet doing anything, so this runs periodically
// and must stay idempotent.
type ReconcileService struct {
	gw gateway.Gateway
}

func NewReconcileService(gw gateway.Gateway) *ReconcileService {
	return &ReconcileService{gw: gw}
}

// FetchPaymentChannels lists channels where address participates. A
// transport failure degrades to an empty list so a periodic sync tick
// can be skipped without aborting the caller.
func (s *ReconcileService) FetchPaymentChannels(ctx context.Context, address string) []gateway.PaymentChannel {
	channels, err := s.gw.GetPaymentChannels(ctx, address)
	if err != nil {
		logger.Error("fetchPaymentChannels failed",
			zap.String("address", address), zap.Error(err))
		return []gateway.PaymentChannel{}
	}
	if monitor.Business != nil {
		monitor.Business.PaymentChannelsSynced.Add(float64(len(channels)))
	}
	return channels
}

// Reconcile returns the history records that channels imply but existing
// does not yet contain. The identity of a record is the (hash, state)
// pair: a channel that moved from committed to settled produces a new
// record, while re-observing the same state produces none, so running
// Reconcile twice over the same inputs yields nothing the second time.
//
// Channels whose token resolves to no known asset are skipped and
// logged. Output preserves the input channel order.
func (s *ReconcileService) Reconcile(accountID uint64, channels []gateway.PaymentChannel, existing []model.HistoryTransaction, index *assets.Index) []model.HistoryTransaction {
	recorded := make(map[string]struct{}, len(existing)+len(channels))
	for _, tx := range existing {
		if !tx.IsPaymentChannel {
			continue
		}
		recorded[channelRecordKey(tx.Hash, tx.ChannelState)] = struct{}{}
	}

	var fresh []model.HistoryTransaction
	for _, ch := range channels {
		key := channelRecordKey(ch.Hash, string(ch.State))
		if _, ok := recorded[key]; ok {
			continue
		}

		asset, ok := resolveChannelAsset(ch, index)
		if !ok {
			logger.Warn("reconcile: channel token not in asset index, skipped",
				zap.String("hash", ch.Hash),
				zap.String("token", ch.Token))
			continue
		}

		recorded[key] = struct{}{}
		fresh = append(fresh, model.HistoryTransaction{
			AccountID:        accountID,
			Hash:             ch.Hash,
			FromAddress:      ch.Sender,
			ToAddress:        ch.Recipient,
			Value:            assets.FormatUnitsString(ch.CommittedAmount, asset.Decimals),
			AssetSymbol:      asset.Symbol,
			IsPaymentChannel: true,
			ChannelState:     string(ch.State),
			Status:           model.TxStatusConfirmed,
			SubmittedAt:      ch.UpdatedAt,
		})
	}

	if monitor.Business != nil && len(fresh) > 0 {
		monitor.Business.HistoryRecordsReconciled.Add(float64(len(fresh)))
	}
	return fresh
}

// resolveChannelAsset maps a channel's token address to asset metadata;
// an empty token means the native currency.
func resolveChannelAsset(ch gateway.PaymentChannel, index *assets.Index) (assets.Asset, bool) {
	token := ch.Token
	if token == "" {
		token = assets.AddressZero
	}
	return index.ByAddress(token)
}

func channelRecordKey(hash, state string) string {
	return strings.ToLower(hash) + "|" + state
}
