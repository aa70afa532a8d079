// Package payment drives the hosted payment widget and verifies its result with the shop API.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/events"
)

var ErrVerificationFailed = errors.New("payment verification failed")

// Widget is the payment UI. Open blocks until the shopper pays, fails or gives up.
type Widget interface {
	Open(ctx context.Context, opts Options) (Outcome, error)
}

// API is the slice of the shop API the bridge needs.
type API interface {
	CreateOrder(ctx context.Context, req clients.CreatePaymentOrderRequest) (clients.CreatePaymentOrderResponse, error)
	Verify(ctx context.Context, req clients.VerifyPaymentRequest) (clients.VerifyPaymentResponse, error)
}

type Config struct {
	// MockKey turns on the simulated gateway for checkout responses carrying this key.
	// Empty disables it.
	MockKey   string
	MockDelay time.Duration
}

// Step is either a finished Result or the widget options the shopper must complete.
type Step struct {
	Options *Options `json:"options,omitempty"`
	Result  *Result  `json:"result,omitempty"`
}

type Bridge struct {
	api    API
	loader Loader
	cfg    Config
	events events.Publisher
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Bridge)

func WithEvents(p events.Publisher) Option { return func(b *Bridge) { b.events = p } }

func WithLogger(l *log.Logger) Option { return func(b *Bridge) { b.logger = l } }

func NewBridge(api API, loader Loader, cfg Config, opts ...Option) *Bridge {
	if cfg.MockDelay <= 0 {
		cfg.MockDelay = 1500 * time.Millisecond
	}
	b := &Bridge{
		api:    api,
		loader: loader,
		cfg:    cfg,
		events: events.Nop{},
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start prepares payment for a placed order. In mock mode the payment is simulated
// and verified right away; otherwise the script is loaded and widget options returned.
func (b *Bridge) Start(ctx context.Context, resp clients.CheckoutResponse, prefill Prefill) (Step, error) {
	if b.isMock(resp.Key) {
		res, err := b.mockPayment(ctx, resp)
		return Step{Result: &res}, err
	}

	if resp.RazorpayOrderID == "" || resp.Key == "" {
		created, err := b.api.CreateOrder(ctx, clients.CreatePaymentOrderRequest{
			OrderID:  resp.OrderID,
			Amount:   resp.Amount,
			Currency: resp.Currency,
		})
		if err != nil {
			return Step{}, fmt.Errorf("create payment order: %w", err)
		}
		resp.RazorpayOrderID = created.RazorpayOrderID
		resp.Key = created.Key
		if !created.Amount.IsZero() {
			resp.Amount = created.Amount
		}
		if created.Currency != "" {
			resp.Currency = created.Currency
		}
		if b.isMock(resp.Key) {
			res, err := b.mockPayment(ctx, resp)
			return Step{Result: &res}, err
		}
	}

	if err := b.loader.Load(ctx); err != nil {
		return Step{}, err
	}

	opts := widgetOptions(resp, prefill)
	return Step{Options: &opts}, nil
}

// Complete settles what the widget reported for orderID.
func (b *Bridge) Complete(ctx context.Context, orderID string, outcome Outcome) (Result, error) {
	switch o := outcome.(type) {
	case Success:
		return b.verify(ctx, orderID, o)
	case *Success:
		return b.verify(ctx, orderID, *o)
	case Failed:
		return b.failed(ctx, orderID, o), nil
	case *Failed:
		return b.failed(ctx, orderID, *o), nil
	case Cancelled, *Cancelled:
		b.emit(ctx, events.PaymentCancelled, map[string]any{"orderId": orderID})
		return Result{Status: StatusCancelled, OrderID: orderID, Message: errmsg.PaymentCancelled}, nil
	default:
		return Result{}, fmt.Errorf("unknown payment outcome %T", outcome)
	}
}

// Run drives an in-process widget from start to finish.
func (b *Bridge) Run(ctx context.Context, resp clients.CheckoutResponse, prefill Prefill, w Widget) (Result, error) {
	step, err := b.Start(ctx, resp, prefill)
	if err != nil {
		if step.Result != nil {
			return *step.Result, err
		}
		return Result{Status: StatusFailed, OrderID: resp.OrderID, Message: errmsg.Payment(err)}, err
	}
	if step.Result != nil {
		return *step.Result, nil
	}

	outcome, err := w.Open(ctx, *step.Options)
	if err != nil {
		return Result{Status: StatusFailed, OrderID: resp.OrderID, Message: errmsg.Payment(err)}, err
	}
	return b.Complete(ctx, resp.OrderID, outcome)
}

func (b *Bridge) isMock(key string) bool {
	return b.cfg.MockKey != "" && key == b.cfg.MockKey
}

func (b *Bridge) mockPayment(ctx context.Context, resp clients.CheckoutResponse) (Result, error) {
	b.logger.Printf("payment: mock mode for order %s", resp.OrderID)

	t := time.NewTimer(b.cfg.MockDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Result{Status: StatusFailed, OrderID: resp.OrderID, Message: errmsg.Network}, ctx.Err()
	case <-t.C:
	}

	return b.verify(ctx, resp.OrderID, Success{
		OrderID:   resp.RazorpayOrderID,
		PaymentID: "pay_mock_" + strconv.FormatInt(b.now().UnixMilli(), 10),
		Signature: "mock_signature_valid",
	})
}

func (b *Bridge) verify(ctx context.Context, orderID string, s Success) (Result, error) {
	resp, err := b.api.Verify(ctx, clients.VerifyPaymentRequest{
		RazorpayOrderID:   s.OrderID,
		RazorpayPaymentID: s.PaymentID,
		RazorpaySignature: s.Signature,
	})
	if err == nil && !resp.Success {
		err = ErrVerificationFailed
		if resp.Message != "" {
			err = fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Message)
		}
	}
	if err != nil {
		msg := errmsg.Payment(err)
		if errors.Is(err, ErrVerificationFailed) && resp.Message != "" {
			msg = resp.Message
		}
		b.emit(ctx, events.PaymentFailed, map[string]any{"orderId": orderID, "reason": msg})
		return Result{Status: StatusFailed, OrderID: orderID, Message: msg}, err
	}

	verified := resp.OrderID
	if verified == "" {
		verified = orderID
	}
	b.emit(ctx, events.PaymentVerified, map[string]any{"orderId": verified, "paymentId": s.PaymentID})
	return Result{Status: StatusCaptured, OrderID: verified, Redirect: SuccessRedirect(verified)}, nil
}

func (b *Bridge) failed(ctx context.Context, orderID string, f Failed) Result {
	msg := errmsg.Payment(&errmsg.GatewayFailure{Code: f.Code, Description: f.Description})
	b.emit(ctx, events.PaymentFailed, map[string]any{"orderId": orderID, "code": f.Code, "reason": msg})
	return Result{Status: StatusFailed, OrderID: orderID, Message: msg}
}

func (b *Bridge) emit(ctx context.Context, name string, payload any) {
	events.Emit(ctx, b.events, b.logger, events.Event{
		Name:         name,
		PartitionKey: clients.GuestIDFrom(ctx),
		Payload:      payload,
	})
}

func widgetOptions(resp clients.CheckoutResponse, prefill Prefill) Options {
	currency := resp.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Options{
		Key:         resp.Key,
		Amount:      resp.Amount,
		Currency:    currency,
		Name:        MerchantName,
		Description: PaymentDescription,
		OrderID:     resp.RazorpayOrderID,
		Prefill:     prefill,
		Theme:       Theme{Color: ThemeColor},
	}
}
