package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"valuta/internal/schemas"
	"valuta/internal/services"
)

// CurrencyHandler handles HTTP requests for currency conversion. Its
// routes are expected to sit behind the bearer-token middleware.
type CurrencyHandler struct {
	currencyService *services.CurrencyService
	validate        *validator.Validate
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService *services.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
		validate:        schemas.NewValidator(),
	}
}

// RegisterRoutes registers the currency routes with the Fiber app.
func (h *CurrencyHandler) RegisterRoutes(router fiber.Router) {
	currencyRoutes := router.Group("/currency")
	currencyRoutes.Get("/exchange", h.HandleExchange)
	currencyRoutes.Get("/list", h.HandleList)
}

// HandleExchange converts an amount between two currency codes via the
// external provider. Amount defaults to 1 when the query omits it.
func (h *CurrencyHandler) HandleExchange(c *fiber.Ctx) error {
	request := schemas.CurrencyRequest{Amount: 1}
	if err := c.QueryParser(&request); err != nil {
		log.Printf("WARN: error parsing exchange query: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
		})
	}

	if err := h.validate.Struct(request); err != nil {
		return writeError(c, err)
	}

	response, err := h.currencyService.GetExchange(c.UserContext(), request)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(response)
}

// HandleList returns the provider's full currency code listing.
func (h *CurrencyHandler) HandleList(c *fiber.Ctx) error {
	all, err := h.currencyService.GetAllCurrencies(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(all)
}
