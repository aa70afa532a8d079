// Package checkout runs the contact, shipping and payment steps for one browser.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/events"
	"github.com/aniayu/storefront-go/internal/payment"
)

type Step string

const (
	StepContact  Step = "contact"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
)

var steps = []Step{StepContact, StepShipping, StepPayment}

const DefaultCountry = "India"

// Prefill keys kept in the browser store for the payment widget.
const (
	KeyUserName  = "userName"
	KeyUserEmail = "userEmail"
	KeyUserPhone = "userPhone"
)

// The text of these errors is shown to the shopper as is.
var (
	ErrContactIncomplete  = errors.New("Please fill in all contact details.")
	ErrShippingIncomplete = errors.New("Please fill in all shipping details.")
	ErrAddressNotSaved    = errors.New("Failed to save address. Please try again.")
	ErrShippingRequired   = errors.New("Please complete the shipping step first.")
	ErrNoPaymentMethod    = errors.New("Please select a payment method.")
	ErrNoPendingPayment   = errors.New("There is no payment in progress.")
	ErrOrderFailed        = errmsg.Show("Failed to create order")
)

var (
	ErrBusy         = errors.New("checkout: another request is in flight")
	ErrLastStep     = errors.New("checkout: already at the last step")
	ErrNotAtPayment = errors.New("checkout: orders are placed from the payment step")
)

type Contact struct {
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	SubscribeNewsletter bool   `json:"subscribeNewsletter"`
}

type Shipping struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// FullName joins first and last name the way the address API expects.
func (s Shipping) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

type API interface {
	CreateAddress(ctx context.Context, req clients.AddressRequest) (clients.Address, error)
	Checkout(ctx context.Context, req clients.CheckoutRequest) (clients.CheckoutResponse, error)
}

type PaymentBridge interface {
	Start(ctx context.Context, resp clients.CheckoutResponse, prefill payment.Prefill) (payment.Step, error)
	Complete(ctx context.Context, orderID string, outcome payment.Outcome) (payment.Result, error)
}

type Session interface {
	Context(ctx context.Context) context.Context
	GuestID() string
}

type Local interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Result is what placing an order (or finishing its payment) led to. Payment is
// set while the shopper still has to complete the widget.
type Result struct {
	Status   payment.Status   `json:"status"`
	OrderID  string           `json:"orderId,omitempty"`
	Redirect string           `json:"redirect,omitempty"`
	Message  string           `json:"message,omitempty"`
	Payment  *payment.Options `json:"payment,omitempty"`
}

// State is a copy of the flow for rendering.
type State struct {
	Step           Step                  `json:"step"`
	Contact        Contact               `json:"contact"`
	Shipping       Shipping              `json:"shipping"`
	PaymentMethod  clients.PaymentMethod `json:"paymentMethod,omitempty"`
	AddressID      string                `json:"addressId,omitempty"`
	PendingOrderID string                `json:"pendingOrderId,omitempty"`
	Err            string                `json:"error,omitempty"`
	Busy           bool                  `json:"busy"`
}

type Flow struct {
	api     API
	bridge  PaymentBridge
	session Session
	local   Local
	events  events.Publisher
	logger  *log.Logger

	busy atomic.Bool

	mu             sync.Mutex
	step           Step
	contact        Contact
	shipping       Shipping
	method         clients.PaymentMethod
	addressID      string
	pendingOrderID string
	err            string
}

type Option func(*Flow)

func WithEvents(p events.Publisher) Option { return func(f *Flow) { f.events = p } }

func WithLogger(l *log.Logger) Option { return func(f *Flow) { f.logger = l } }

func NewFlow(api API, bridge PaymentBridge, session Session, local Local, opts ...Option) *Flow {
	f := &Flow{
		api:     api,
		bridge:  bridge,
		session: session,
		local:   local,
		events:  events.Nop{},
		logger:  log.Default(),
		step:    StepContact,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) SetContact(c Contact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contact = c
}

func (f *Flow) SetShipping(s Shipping) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipping = s
}

// SelectPayment picks cod, card or upi.
func (f *Flow) SelectPayment(method clients.PaymentMethod) error {
	switch method {
	case clients.PaymentCOD, clients.PaymentCard, clients.PaymentUPI:
	default:
		return fmt.Errorf("%w: unsupported method %q", ErrNoPaymentMethod, method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Step:           f.step,
		Contact:        f.contact,
		Shipping:       f.shipping,
		PaymentMethod:  f.method,
		AddressID:      f.addressID,
		PendingOrderID: f.pendingOrderID,
		Err:            f.err,
		Busy:           f.busy.Load(),
	}
}

// Reset starts a fresh flow at the contact step.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepContact
	f.contact = Contact{}
	f.shipping = Shipping{}
	f.method = ""
	f.addressID = ""
	f.pendingOrderID = ""
	f.err = ""
}

// Back moves one step back. It does nothing at the first step.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := stepIndex(f.step); i > 0 {
		f.step = steps[i-1]
	}
	// The address is saved again on the way back to payment.
	if f.step != StepPayment {
		f.addressID = ""
	}
	f.err = ""
}

// Next validates the current step and advances. Leaving shipping saves the address first.
func (f *Flow) Next(ctx context.Context) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	step, contact, shipping := f.step, f.contact, f.shipping
	f.mu.Unlock()

	var err error
	switch step {
	case StepContact:
		err = f.completeContact(ctx, contact)
	case StepShipping:
		err = f.completeShipping(ctx, contact, shipping)
	default:
		return ErrLastStep
	}
	if err != nil {
		return err
	}

	events.Emit(ctx, f.events, f.logger, events.Event{
		Name:         events.CheckoutStepCompleted,
		PartitionKey: f.session.GuestID(),
		Payload:      map[string]string{"step": string(step)},
	})
	return nil
}

func (f *Flow) completeContact(ctx context.Context, c Contact) error {
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Phone) == "" {
		f.fail(ErrContactIncomplete.Error())
		return ErrContactIncomplete
	}

	f.remember(ctx, KeyUserEmail, strings.TrimSpace(c.Email))
	f.remember(ctx, KeyUserPhone, strings.TrimSpace(c.Phone))

	f.advance(StepShipping)
	return nil
}

func (f *Flow) completeShipping(ctx context.Context, c Contact, s Shipping) error {
	for _, v := range []string{s.FirstName, s.Address, s.City, s.State, s.PostalCode} {
		if strings.TrimSpace(v) == "" {
			f.fail(ErrShippingIncomplete.Error())
			return ErrShippingIncomplete
		}
	}

	country := strings.TrimSpace(s.Country)
	if country == "" {
		country = DefaultCountry
	}

	addr, err := f.api.CreateAddress(f.session.Context(ctx), clients.AddressRequest{
		FullName:     s.FullName(),
		Email:        strings.TrimSpace(c.Email),
		Phone:        strings.TrimSpace(c.Phone),
		AddressLine1: strings.TrimSpace(s.Address),
		City:         strings.TrimSpace(s.City),
		State:        strings.TrimSpace(s.State),
		Country:      country,
		PostalCode:   strings.TrimSpace(s.PostalCode),
	})
	if err != nil {
		f.fail(errmsg.Checkout(err))
		return fmt.Errorf("save address: %w", err)
	}
	if strings.TrimSpace(addr.ID) == "" {
		f.fail(ErrAddressNotSaved.Error())
		return ErrAddressNotSaved
	}

	f.remember(ctx, KeyUserName, s.FullName())

	f.mu.Lock()
	f.addressID = addr.ID
	f.mu.Unlock()
	f.advance(StepPayment)
	return nil
}

// PlaceOrder submits the order. Cash on delivery, or an order the API says needs no
// payment, is confirmed immediately; anything else goes through the payment bridge.
func (f *Flow) PlaceOrder(ctx context.Context, cartItemIDs []string) (Result, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	step, addressID, method, contact, shipping := f.step, f.addressID, f.method, f.contact, f.shipping
	f.mu.Unlock()

	if addressID == "" {
		f.fail(ErrShippingRequired.Error())
		return Result{Status: payment.StatusFailed, Message: ErrShippingRequired.Error()}, ErrShippingRequired
	}
	if step != StepPayment {
		return Result{}, ErrNotAtPayment
	}
	if method == "" {
		f.fail(ErrNoPaymentMethod.Error())
		return Result{Status: payment.StatusFailed, Message: ErrNoPaymentMethod.Error()}, ErrNoPaymentMethod
	}

	ctx = f.session.Context(ctx)
	resp, err := f.api.Checkout(ctx, clients.CheckoutRequest{
		AddressID:     addressID,
		PaymentMethod: method,
		CartItemIDs:   cartItemIDs,
	})
	if err == nil && !resp.Success {
		err = ErrOrderFailed
		if resp.Message != "" {
			err = errmsg.Show(resp.Message)
		}
	}
	if err != nil {
		msg := errmsg.Checkout(err)
		f.fail(msg)
		return Result{Status: payment.StatusFailed, Message: msg}, err
	}

	events.Emit(ctx, f.events, f.logger, events.Event{
		Name:         events.OrderPlaced,
		PartitionKey: f.session.GuestID(),
		Payload: map[string]any{
			"orderId":         resp.OrderID,
			"paymentMethod":   method,
			"requiresPayment": resp.RequiresPayment,
			"amount":          resp.Amount,
		},
	})

	if method == clients.PaymentCOD || !resp.RequiresPayment {
		f.Reset()
		return Result{
			Status:   payment.StatusConfirmed,
			OrderID:  resp.OrderID,
			Redirect: payment.SuccessRedirect(resp.OrderID),
		}, nil
	}

	f.mu.Lock()
	f.pendingOrderID = resp.OrderID
	f.err = ""
	f.mu.Unlock()

	payStep, err := f.bridge.Start(ctx, resp, f.prefill(ctx, contact, shipping))
	if payStep.Result != nil {
		return f.settle(*payStep.Result), err
	}
	if err != nil {
		msg := errmsg.Payment(err)
		f.fail(msg)
		return Result{Status: payment.StatusFailed, OrderID: resp.OrderID, Message: msg}, err
	}
	return Result{Status: payment.StatusPending, OrderID: resp.OrderID, Payment: payStep.Options}, nil
}

// CompletePayment feeds the widget's outcome for the pending order back into the flow.
func (f *Flow) CompletePayment(ctx context.Context, outcome payment.Outcome) (Result, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	orderID := f.pendingOrderID
	f.mu.Unlock()
	if orderID == "" {
		return Result{}, ErrNoPendingPayment
	}

	res, err := f.bridge.Complete(f.session.Context(ctx), orderID, outcome)
	return f.settle(res), err
}

// settle records a bridge result: captured orders end the flow, anything else stays
// on the payment step with its message.
func (f *Flow) settle(res payment.Result) Result {
	if res.Status == payment.StatusCaptured {
		f.Reset()
	} else {
		f.fail(res.Message)
	}
	return Result{Status: res.Status, OrderID: res.OrderID, Redirect: res.Redirect, Message: res.Message}
}

func (f *Flow) prefill(ctx context.Context, c Contact, s Shipping) payment.Prefill {
	p := payment.Prefill{Name: s.FullName(), Email: c.Email, Contact: c.Phone}
	if v, ok, err := f.local.Get(ctx, KeyUserName); err == nil && ok {
		p.Name = v
	}
	if v, ok, err := f.local.Get(ctx, KeyUserEmail); err == nil && ok {
		p.Email = v
	}
	if v, ok, err := f.local.Get(ctx, KeyUserPhone); err == nil && ok {
		p.Contact = v
	}
	return p
}

func (f *Flow) remember(ctx context.Context, key, value string) {
	if err := f.local.Set(ctx, key, value); err != nil {
		f.logger.Printf("checkout: persist %s: %v", key, err)
	}
}

func (f *Flow) advance(to Step) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = to
	f.err = ""
}

func (f *Flow) fail(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = msg
}

func stepIndex(s Step) int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return 0
}
