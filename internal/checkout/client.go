package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"course-order-service/internal/dto"
	"course-order-service/internal/model"

	"github.com/avast/retry-go"
)

// OrdersAPI es lo que el flujo de checkout necesita del servicio de
// órdenes; interfaz para poder simular el servidor en los tests.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, courseID string, amount float64) (*model.Order, error)
	CompletePayment(ctx context.Context, orderID string) (*model.Order, error)
	MyOrders(ctx context.Context) ([]*model.Order, error)
}

// APIError es una respuesta no-2xx del servidor, con el mensaje legible que
// devuelve el controller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("servidor respondió %d: %s", e.StatusCode, e.Message)
}

// Client habla con la superficie REST de órdenes usando el token del
// usuario autenticado.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateOrder(ctx context.Context, courseID string, amount float64) (*model.Order, error) {
	body := map[string]any{"courseId": courseID, "amount": amount}
	var res dto.OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", body, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

// CompletePayment pide la transición post-pago con reintentos acotados con
// backoff: si esta llamada se pierde, la orden queda "pending" para siempre
// sin otro camino que un admin a mano.
func (c *Client) CompletePayment(ctx context.Context, orderID string) (*model.Order, error) {
	var res dto.OrderResponse
	err := retry.Do(
		func() error {
			return c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%s/complete-payment", orderID), nil, &res)
		},
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// Solo reintentamos fallas de transporte o 5xx; un 4xx no va a
			// mejorar por insistir.
			apiErr, ok := err.(*APIError)
			return !ok || apiErr.StatusCode >= 500
		}),
	)
	if err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]*model.Order, error) {
	var res dto.OrderListResponse
	if err := c.do(ctx, http.MethodGet, "/orders/my-orders", nil, &res); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
