package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/handler/response"
	"smartwallet-core/internal/service"
	"smartwallet-core/pkg/assets"
	"smartwallet-core/pkg/errno"
)

// WalletHandler exposes the wallet orchestration over HTTP.
type WalletHandler struct {
	wallet *service.WalletService
	batch  *service.BatchService
}

func NewWalletHandler(wallet *service.WalletService, batch *service.BatchService) *WalletHandler {
	return &WalletHandler{wallet: wallet, batch: batch}
}

type assetPayload struct {
	Address  string `json:"address" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Decimals int32  `json:"decimals"`
}

type importAccountsRequest struct {
	Assets []assetPayload `json:"assets" binding:"required,min=1,dive"`
}

// ImportAccounts pulls connected accounts from the gateway and seeds the
// asset set.
func (h *WalletHandler) ImportAccounts(c *gin.Context) {
	var req importAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	list := make([]assets.Asset, 0, len(req.Assets))
	for _, a := range req.Assets {
		list = append(list, assets.Asset{
			Address:  a.Address,
			Symbol:   a.Symbol,
			Decimals: a.Decimals,
		})
	}

	if err := h.wallet.ImportAccounts(c.Request.Context(), list); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ActiveAccount returns the account the wallet currently operates as.
func (h *WalletHandler) ActiveAccount(c *gin.Context) {
	account, err := h.wallet.ActiveAccount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, account)
}

// Balances returns the cached balances of the active account.
func (h *WalletHandler) Balances(c *gin.Context) {
	balances, err := h.wallet.CachedBalances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"balances": balances})
}

// RefreshBalances re-reads balances from the gateway.
func (h *WalletHandler) RefreshBalances(c *gin.Context) {
	if err := h.wallet.RefreshBalances(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.Balances(c)
}

// History returns recent transaction history, newest first.
func (h *WalletHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.wallet.History(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"history": history})
}

type sendTransaction struct {
	To           string `json:"to" binding:"required"`
	Value        string `json:"value"`
	TokenAddress string `json:"token_address"`
	Data         string `json:"data"`
}

type sendBatchRequest struct {
	Transactions []sendTransaction `json:"transactions" binding:"required,min=1,dive"`
	FeeToken     string            `json:"fee_token"`
}

// SendBatch submits the transactions as one gateway batch.
func (h *WalletHandler) SendBatch(c *gin.Context) {
	var req sendBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	txs := make([]gateway.TransactionIntent, 0, len(req.Transactions))
	for _, tx := range req.Transactions {
		txs = append(txs, gateway.TransactionIntent{
			To:           tx.To,
			Value:        tx.Value,
			TokenAddress: tx.TokenAddress,
			Data:         tx.Data,
		})
	}

	submitted, err := h.wallet.SubmitTransfer(c.Request.Context(), service.OnChainBatchSend{
		Transactions: txs,
		FeeToken:     req.FeeToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submitted)
}

type sendPaymentRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Token     string `json:"token"`
	Value     string `json:"value" binding:"required"`
}

// SendPayment tops up a payment channel to the recipient.
func (h *WalletHandler) SendPayment(c *gin.Context) {
	var req sendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	submitted, err := h.wallet.SubmitTransfer(c.Request.Context(), service.PeerToPeerSend{
		Recipient: req.Recipient,
		Token:     req.Token,
		Value:     req.Value,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submitted)
}

// Estimate returns the gateway's cost estimate for the pending batch.
// Only meaningful between append and submit; an empty body means the
// gateway had no estimate.
func (h *WalletHandler) Estimate(c *gin.Context) {
	estimate, err := h.batch.Estimate(c.Request.Context(), c.Query("fee_token"))
	if err != nil {
		response.Error(c, errno.ErrGatewayTransport)
		return
	}
	response.Success(c, estimate)
}

type reserveENSRequest struct {
	Username string `json:"username" binding:"required,min=3"`
}

// ReserveENS reserves an ENS subname for the active account.
func (h *WalletHandler) ReserveENS(c *gin.Context) {
	var req reserveENSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	if err := h.wallet.ReserveENSName(c.Request.Context(), req.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// PaymentNetwork returns the payment-network stake state.
func (h *WalletHandler) PaymentNetwork(c *gin.Context) {
	state, err := h.wallet.PaymentNetwork(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

// SyncChannels reconciles payment channels into local history.
func (h *WalletHandler) SyncChannels(c *gin.Context) {
	if err := h.wallet.SyncPaymentChannels(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
