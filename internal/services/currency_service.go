package services

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"valuta/internal/apperrors"
	"valuta/internal/schemas"
)

// CurrencyConfig holds the third-party exchange-rate provider settings.
// URL templates use {name} placeholders matching the request field names,
// e.g. ".../convert?from={currency_1}&to={currency_2}&amount={amount}".
type CurrencyConfig struct {
	APIKey      string
	ListURL     string
	ExchangeURL string
}

// CurrencyService proxies the third-party currency API and normalizes
// its failures: transport errors, non-success statuses and malformed
// payloads each map to their own taxonomy member. Upstream data quality
// problems never surface as client validation errors.
type CurrencyService struct {
	client   *http.Client
	config   CurrencyConfig
	validate *validator.Validate
}

// NewCurrencyService creates a new CurrencyService. A nil client falls
// back to http.DefaultClient.
func NewCurrencyService(client *http.Client, config CurrencyConfig) *CurrencyService {
	if client == nil {
		client = http.DefaultClient
	}
	return &CurrencyService{
		client:   client,
		config:   config,
		validate: schemas.NewValidator(),
	}
}

// GetExchange converts request.Amount from Currency1 to Currency2 via
// the provider's exchange endpoint.
func (s *CurrencyService) GetExchange(ctx context.Context, request schemas.CurrencyRequest) (schemas.CurrencyResponse, error) {
	data, err := s.fetch(ctx, s.config.ExchangeURL, map[string]string{
		"currency_1": request.Currency1,
		"currency_2": request.Currency2,
		"amount":     strconv.FormatFloat(request.Amount, 'f', -1, 64),
	})
	if err != nil {
		return schemas.CurrencyResponse{}, err
	}

	raw, err := extract(data, "result")
	if err != nil {
		return schemas.CurrencyResponse{}, err
	}
	result, ok := raw.(float64)

	response := schemas.CurrencyResponse{
		Currency1: request.Currency1,
		Currency2: request.Currency2,
		Amount:    request.Amount,
		Result:    result,
	}
	// A result the provider sent but which fails the response schema is
	// still an upstream contract break, not a client problem.
	if !ok || s.validate.Struct(response) != nil {
		return schemas.CurrencyResponse{}, &apperrors.DataError{Key: "result", Body: encode(data)}
	}
	return response, nil
}

// GetAllCurrencies fetches the provider's full code-to-name listing.
func (s *CurrencyService) GetAllCurrencies(ctx context.Context) (schemas.CurrencyAll, error) {
	data, err := s.fetch(ctx, s.config.ListURL, nil)
	if err != nil {
		return schemas.CurrencyAll{}, err
	}

	raw, err := extract(data, "currencies")
	if err != nil {
		return schemas.CurrencyAll{}, err
	}

	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		return schemas.CurrencyAll{}, &apperrors.DataError{Key: "currencies", Body: encode(data)}
	}
	currencies := make(map[string]string, len(rawMap))
	for code, name := range rawMap {
		nameString, ok := name.(string)
		if !ok {
			return schemas.CurrencyAll{}, &apperrors.DataError{Key: "currencies", Body: encode(data)}
		}
		currencies[code] = nameString
	}

	all := schemas.CurrencyAll{Currencies: currencies}
	if err := s.validate.Struct(all); err != nil {
		return schemas.CurrencyAll{}, &apperrors.DataError{Key: "currencies", Body: encode(data)}
	}
	return all, nil
}

// fetch issues a GET against the templated URL with the provider API key
// attached and decodes the JSON body of a 200 response.
func (s *CurrencyService) fetch(ctx context.Context, urlTemplate string, params map[string]string) (map[string]interface{}, error) {
	url := expandTemplate(urlTemplate, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apperrors.TransportError{Err: err}
	}
	req.Header.Set("apikey", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &apperrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.TransportError{Err: err}
	}
	log.Printf("DEBUG: external API responded with status %d: %s", resp.StatusCode, body)

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &apperrors.DataError{Body: string(body)}
	}
	return data, nil
}

// extract pulls key out of an already-decoded payload, keeping the whole
// payload in the error for diagnostics when the key is absent.
func extract(data map[string]interface{}, key string) (interface{}, error) {
	value, ok := data[key]
	if !ok {
		return nil, &apperrors.DataError{Key: key, Body: encode(data)}
	}
	return value, nil
}

// expandTemplate substitutes {name} placeholders in the URL template.
func expandTemplate(urlTemplate string, params map[string]string) string {
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(urlTemplate)
}

func encode(data map[string]interface{}) string {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "<unencodable payload>"
	}
	return string(encoded)
}
