package handlers

import (
	domain "sabzi/internal/errors"
	"sabzi/internal/models"
	"sabzi/internal/services/wallet"
	"sabzi/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
	minAmount     int64
}

func NewWalletHandler(walletService wallet.Service, minAmount int64) *WalletHandler {
	if minAmount <= 0 {
		minAmount = wallet.DefaultMinTransactionAmount
	}
	return &WalletHandler{
		walletService: walletService,
		minAmount:     minAmount,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// statusForError is the single place domain error codes become HTTP statuses.
// Persistence failures are reported generically, never with internal detail.
func statusForError(err error) (int, string) {
	switch domain.CodeOf(err) {
	case domain.ErrWalletNotFound.Code:
		return fiber.StatusNotFound, err.Error()
	case domain.ErrUnauthorized.Code:
		return fiber.StatusForbidden, err.Error()
	case domain.ErrInvalidAmount.Code,
		domain.ErrAmountExceedsCeiling.Code,
		domain.ErrWalletInactive.Code:
		return fiber.StatusBadRequest, err.Error()
	case domain.ErrInsufficientAvailableBalance.Code,
		domain.ErrInsufficientLockedBalance.Code,
		domain.ErrDailyDepositLimitExceeded.Code,
		domain.ErrDailyWithdrawalLimitExceeded.Code:
		return fiber.StatusUnprocessableEntity, err.Error()
	case domain.ErrConcurrencyConflict.Code:
		return fiber.StatusConflict, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status, message := statusForError(err)
	return utils.Error(c, status, message)
}

type amountRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	view, err := h.walletService.CreateWallet(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"wallet_id":         view.ID,
		"balance":           view.Balance,
		"available_balance": view.AvailableBalance,
		"created_at":        view.CreatedAt,
	})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	view, err := h.walletService.GetWallet(c.Context(), c.Params("id"), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": view})
}

func (h *WalletHandler) TransactionHistory(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	history, err := h.walletService.TransactionHistory(c.Context(), c.Params("id"), claims.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"transactions": history})
}

func (h *WalletHandler) ListWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	result, err := h.walletService.ListWallets(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, result)
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	return h.mutateAmount(c, "deposit")
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	return h.mutateAmount(c, "withdraw")
}

// mutateAmount handles deposit and withdraw, which share the request shape
// and the transport-level amount floor.
func (h *WalletHandler) mutateAmount(c *fiber.Ctx, op string) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input amountRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Amount < h.minAmount {
		return utils.BadRequest(c, "amount is below the minimum transaction amount")
	}

	var view *wallet.WalletView
	walletID := c.Params("id")
	switch op {
	case "deposit":
		view, err = h.walletService.Deposit(c.Context(), walletID, claims.UserID, input.Amount, input.Description)
	case "withdraw":
		view, err = h.walletService.Withdraw(c.Context(), walletID, claims.UserID, input.Amount, input.Description)
	}
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": view})
}

func (h *WalletHandler) Lock(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input amountRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	view, err := h.walletService.Lock(c.Context(), c.Params("id"), claims.UserID, input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": view})
}

func (h *WalletHandler) Unlock(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input amountRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	view, err := h.walletService.Unlock(c.Context(), c.Params("id"), claims.UserID, input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": view})
}
