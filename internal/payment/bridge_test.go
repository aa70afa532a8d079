package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/errmsg"
	"github.com/aniayu/storefront-go/internal/events"
)

func init() {
	errmsg.SetLogger(log.New(io.Discard, "", 0))
}

type fakeAPI struct {
	verifyReqs []clients.VerifyPaymentRequest
	verifyResp clients.VerifyPaymentResponse
	verifyErr  error

	createReqs []clients.CreatePaymentOrderRequest
	createResp clients.CreatePaymentOrderResponse
}

func (f *fakeAPI) CreateOrder(_ context.Context, req clients.CreatePaymentOrderRequest) (clients.CreatePaymentOrderResponse, error) {
	f.createReqs = append(f.createReqs, req)
	return f.createResp, nil
}

func (f *fakeAPI) Verify(_ context.Context, req clients.VerifyPaymentRequest) (clients.VerifyPaymentResponse, error) {
	f.verifyReqs = append(f.verifyReqs, req)
	return f.verifyResp, f.verifyErr
}

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(context.Context) error {
	l.calls.Add(1)
	return l.err
}

type scriptedWidget struct {
	outcome Outcome
	err     error
	opened  []Options
}

func (w *scriptedWidget) Open(_ context.Context, opts Options) (Outcome, error) {
	w.opened = append(w.opened, opts)
	return w.outcome, w.err
}

const mockKey = "rzp_test_mock_key"

func newTestBridge(api API, loader Loader, cfg Config, rec *events.Recorder) *Bridge {
	return NewBridge(api, loader, cfg, WithEvents(rec), WithLogger(log.New(io.Discard, "", 0)))
}

func onlineResponse() clients.CheckoutResponse {
	return clients.CheckoutResponse{
		Success:         true,
		OrderID:         "ord-1",
		RequiresPayment: true,
		RazorpayOrderID: "order_rzp_1",
		Amount:          decimal.NewFromInt(129900),
		Key:             "rzp_live_abc",
	}
}

func TestStartReturnsWidgetOptions(t *testing.T) {
	loader := &countingLoader{}
	b := newTestBridge(&fakeAPI{}, loader, Config{}, &events.Recorder{})

	step, err := b.Start(context.Background(), onlineResponse(), Prefill{Name: "Asha", Email: "a@x.in", Contact: "98"})
	require.NoError(t, err)
	require.NotNil(t, step.Options)
	assert.Nil(t, step.Result)

	opts := *step.Options
	assert.Equal(t, "rzp_live_abc", opts.Key)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "Ani & Ayu", opts.Name)
	assert.Equal(t, "Order Payment", opts.Description)
	assert.Equal(t, "order_rzp_1", opts.OrderID)
	assert.Equal(t, "#F4A261", opts.Theme.Color)
	assert.Equal(t, Prefill{Name: "Asha", Email: "a@x.in", Contact: "98"}, opts.Prefill)
	assert.True(t, opts.Amount.Equal(decimal.NewFromInt(129900)))
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestStartScriptLoadFailure(t *testing.T) {
	loader := &countingLoader{err: errmsg.ErrScriptLoad}
	b := newTestBridge(&fakeAPI{}, loader, Config{}, &events.Recorder{})

	_, err := b.Start(context.Background(), onlineResponse(), Prefill{})
	require.ErrorIs(t, err, errmsg.ErrScriptLoad)
	assert.Equal(t, errmsg.ScriptLoadFailed, errmsg.Payment(err))
}

func TestMockModeVerifiesWithoutLoader(t *testing.T) {
	api := &fakeAPI{verifyResp: clients.VerifyPaymentResponse{Success: true, OrderID: "ord-1"}}
	loader := &countingLoader{}
	rec := &events.Recorder{}
	b := newTestBridge(api, loader, Config{MockKey: mockKey, MockDelay: time.Millisecond}, rec)
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }

	resp := onlineResponse()
	resp.Key = mockKey
	widget := &scriptedWidget{}

	res, err := b.Run(context.Background(), resp, Prefill{}, widget)
	require.NoError(t, err)

	assert.Equal(t, StatusCaptured, res.Status)
	assert.Equal(t, "/checkout/success?orderId=ord-1", res.Redirect)
	assert.Equal(t, int32(0), loader.calls.Load())
	assert.Empty(t, widget.opened)

	require.Len(t, api.verifyReqs, 1)
	assert.Equal(t, clients.VerifyPaymentRequest{
		RazorpayOrderID:   "order_rzp_1",
		RazorpayPaymentID: "pay_mock_1700000000000",
		RazorpaySignature: "mock_signature_valid",
	}, api.verifyReqs[0])
	assert.Equal(t, []string{events.PaymentVerified}, rec.Names())
}

func TestMockKeyIgnoredUnlessConfigured(t *testing.T) {
	loader := &countingLoader{}
	b := newTestBridge(&fakeAPI{}, loader, Config{}, &events.Recorder{})

	resp := onlineResponse()
	resp.Key = mockKey
	step, err := b.Start(context.Background(), resp, Prefill{})
	require.NoError(t, err)
	require.NotNil(t, step.Options)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestMockDelayHonoursCancellation(t *testing.T) {
	api := &fakeAPI{verifyResp: clients.VerifyPaymentResponse{Success: true}}
	b := newTestBridge(api, &countingLoader{}, Config{MockKey: mockKey, MockDelay: time.Hour}, &events.Recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := onlineResponse()
	resp.Key = mockKey
	_, err := b.Start(ctx, resp, Prefill{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.verifyReqs)
}

func TestStartCreatesPaymentOrderWhenMissing(t *testing.T) {
	api := &fakeAPI{createResp: clients.CreatePaymentOrderResponse{
		Success:         true,
		RazorpayOrderID: "order_rzp_9",
		Amount:          decimal.NewFromInt(5000),
		Currency:        "INR",
		Key:             "rzp_live_abc",
	}}
	b := newTestBridge(api, &countingLoader{}, Config{}, &events.Recorder{})

	resp := onlineResponse()
	resp.RazorpayOrderID = ""
	resp.Key = ""
	step, err := b.Start(context.Background(), resp, Prefill{})
	require.NoError(t, err)

	require.Len(t, api.createReqs, 1)
	assert.Equal(t, "ord-1", api.createReqs[0].OrderID)
	assert.Equal(t, "order_rzp_9", step.Options.OrderID)
	assert.True(t, step.Options.Amount.Equal(decimal.NewFromInt(5000)))
}

func TestCompleteSuccess(t *testing.T) {
	api := &fakeAPI{verifyResp: clients.VerifyPaymentResponse{Success: true, OrderID: "ord-verified"}}
	b := newTestBridge(api, &countingLoader{}, Config{}, &events.Recorder{})

	res, err := b.Complete(context.Background(), "ord-1", Success{OrderID: "o", PaymentID: "p", Signature: "s"})
	require.NoError(t, err)
	assert.Equal(t, Result{Status: StatusCaptured, OrderID: "ord-verified", Redirect: "/checkout/success?orderId=ord-verified"}, res)
}

func TestCompleteVerificationRejected(t *testing.T) {
	api := &fakeAPI{verifyResp: clients.VerifyPaymentResponse{Success: false, Message: "Invalid signature"}}
	rec := &events.Recorder{}
	b := newTestBridge(api, &countingLoader{}, Config{}, rec)

	res, err := b.Complete(context.Background(), "ord-1", Success{OrderID: "o", PaymentID: "p", Signature: "bad"})
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "Invalid signature", res.Message)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, []string{events.PaymentFailed}, rec.Names())
}

func TestCompleteVerificationErrors(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"conflict":  {err: &clients.APIError{Status: http.StatusConflict}, want: errmsg.AlreadyProcessed},
		"not found": {err: &clients.APIError{Status: http.StatusNotFound}, want: errmsg.OrderNotFound},
		"network":   {err: &clients.NetworkError{Op: "POST", Err: errors.New("reset")}, want: errmsg.Network},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			b := newTestBridge(&fakeAPI{verifyErr: tc.err}, &countingLoader{}, Config{}, &events.Recorder{})
			res, err := b.Complete(context.Background(), "ord-1", Success{})
			require.Error(t, err)
			assert.Equal(t, tc.want, res.Message)
			assert.Empty(t, res.Redirect)
		})
	}
}

func TestCompleteFailedAndCancelled(t *testing.T) {
	rec := &events.Recorder{}
	api := &fakeAPI{}
	b := newTestBridge(api, &countingLoader{}, Config{}, rec)

	res, err := b.Complete(context.Background(), "ord-1", Failed{Code: "BAD_REQUEST_ERROR", Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, Result{Status: StatusFailed, OrderID: "ord-1", Message: errmsg.GatewayBadRequest}, res)

	res, err = b.Complete(context.Background(), "ord-1", Cancelled{})
	require.NoError(t, err)
	assert.Equal(t, Result{Status: StatusCancelled, OrderID: "ord-1", Message: errmsg.PaymentCancelled}, res)

	assert.Empty(t, api.verifyReqs)
	assert.Equal(t, []string{events.PaymentFailed, events.PaymentCancelled}, rec.Names())
}

func TestRunOpensWidget(t *testing.T) {
	api := &fakeAPI{verifyResp: clients.VerifyPaymentResponse{Success: true, OrderID: "ord-1"}}
	b := newTestBridge(api, &countingLoader{}, Config{}, &events.Recorder{})
	widget := &scriptedWidget{outcome: Success{OrderID: "order_rzp_1", PaymentID: "pay_1", Signature: "sig"}}

	res, err := b.Run(context.Background(), onlineResponse(), Prefill{}, widget)
	require.NoError(t, err)
	assert.Len(t, widget.opened, 1)
	assert.Equal(t, StatusCaptured, res.Status)
	assert.Equal(t, "pay_1", api.verifyReqs[0].RazorpayPaymentID)
}

func TestRunWidgetCancelled(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBridge(api, &countingLoader{}, Config{}, &events.Recorder{})

	res, err := b.Run(context.Background(), onlineResponse(), Prefill{}, &scriptedWidget{outcome: Cancelled{}})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Empty(t, res.Redirect)
	assert.Empty(t, api.verifyReqs)
}

func TestScriptLoaderFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("window.Razorpay = function(){}"))
	}))
	defer srv.Close()

	l := NewScriptLoader(srv.URL+"/v1/checkout.js", srv.Client())
	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Load(context.Background()))

	assert.True(t, l.Loaded())
	assert.Equal(t, int32(1), hits.Load())
}

func TestScriptLoaderRetriesAfterFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	l := NewScriptLoader(srv.URL, srv.Client())
	err := l.Load(context.Background())
	require.ErrorIs(t, err, errmsg.ErrScriptLoad)
	assert.False(t, l.Loaded())

	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, int32(2), hits.Load())
}

func TestSuccessRedirectEscapes(t *testing.T) {
	assert.Equal(t, "/checkout/success?orderId=abc123", SuccessRedirect("abc123"))
	assert.Equal(t, "/checkout/success?orderId=a%26b", SuccessRedirect("a&b"))
}
