package http_server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danthegoodman1/tinyrdb/wallet"
)

type (
	CreateWalletReqBody struct {
		WalletID int64   `json:"wallet_id" validate:"required"`
		Owner    string  `json:"owner" validate:"required"`
		Balance  float64 `json:"balance" validate:"gte=0"`
	}

	EditWalletReqBody struct {
		Owner string  `json:"owner"`
		Topup float64 `json:"topup"`
	}

	PayReqBody struct {
		Amount float64 `json:"amount" validate:"gt=0"`
	}
)

func (s *HTTPServer) CreateWallet(c *CustomContext) error {
	var reqBody CreateWalletReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	row, err := s.Wallets.Create(c.Request().Context(), reqBody.WalletID, reqBody.Owner, reqBody.Balance)
	if err != nil {
		return c.walletError(err, "error creating wallet")
	}
	return c.JSON(http.StatusCreated, row)
}

func (s *HTTPServer) EditWallet(c *CustomContext) error {
	id, err := walletIDParam(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	var reqBody EditWalletReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	row, err := s.Wallets.Edit(c.Request().Context(), id, wallet.Edit{Owner: reqBody.Owner, Topup: reqBody.Topup})
	if err != nil {
		return c.walletError(err, "error editing wallet")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Wallet updated", "wallet": row})
}

func (s *HTTPServer) DeactivateWallet(c *CustomContext) error {
	id, err := walletIDParam(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if err := s.Wallets.Deactivate(c.Request().Context(), id); err != nil {
		return c.walletError(err, "error deactivating wallet")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Wallet deactivated"})
}

func (s *HTTPServer) PayWallet(c *CustomContext) error {
	id, err := walletIDParam(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	var reqBody PayReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	entry, err := s.Wallets.Pay(c.Request().Context(), id, reqBody.Amount)
	if err != nil {
		return c.walletError(err, "error paying from wallet")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Payment successful", "transaction": entry})
}

func (s *HTTPServer) Dashboard(c *CustomContext) error {
	dash, err := s.Wallets.Dashboard(c.Request().Context())
	if err != nil {
		return c.StatementError(err, "error building dashboard")
	}
	return c.JSON(http.StatusOK, dash)
}

func (c *CustomContext) walletError(err error, msg string) error {
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound):
		return c.ErrorJSON(http.StatusNotFound, err)
	case errors.Is(err, wallet.ErrWalletExists):
		return c.ErrorJSON(http.StatusConflict, err)
	case errors.Is(err, wallet.ErrWalletInactive), errors.Is(err, wallet.ErrInsufficientFunds), errors.Is(err, wallet.ErrInvalidAmount):
		return c.ErrorJSON(http.StatusBadRequest, err)
	default:
		return c.StatementError(err, msg)
	}
}

func walletIDParam(c *CustomContext) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
