package paygate_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"shop/internal/paygate"

	"github.com/stretchr/testify/assert"
)

func newTestClient() *paygate.Client {
	return paygate.NewClient("TESTCODE", "test-secret", "https://pay.example.com/vpcpay.html", "https://api.example.com/vnpay-return")
}

func TestBuildPayURL_Deterministic(t *testing.T) {
	c := newTestClient()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	u1 := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	u2 := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)

	assert.Equal(t, u1, u2)
}

func TestBuildPayURL_Params(t *testing.T) {
	c := newTestClient()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	raw := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	assert.True(t, strings.HasPrefix(raw, "https://pay.example.com/vpcpay.html?"))

	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "TESTCODE", q.Get("vnp_TmnCode"))
	// 金額×100
	assert.Equal(t, "3525000", q.Get("vnp_Amount"))
	// YmdHis
	assert.Equal(t, "20240102030405", q.Get("vnp_CreateDate"))
	assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
	assert.Equal(t, "192.0.2.1", q.Get("vnp_IpAddr"))
	assert.Equal(t, "vn", q.Get("vnp_Locale"))
	assert.Equal(t, "billpayment", q.Get("vnp_OrderType"))
	assert.Equal(t, "https://api.example.com/vnpay-return", q.Get("vnp_ReturnUrl"))
	assert.Equal(t, "inv-1", q.Get("vnp_TxnRef"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))
}

// BuildPayURLが付けた署名はVerifyで検証できる
func TestVerify_RoundTrip(t *testing.T) {
	c := newTestClient()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	raw := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	assert.True(t, c.Verify(parsed.Query()))
}

func TestVerify_TamperedParam(t *testing.T) {
	c := newTestClient()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	raw := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	q := parsed.Query()
	q.Set("vnp_Amount", "1")
	assert.False(t, c.Verify(q))
}

func TestVerify_MissingHash(t *testing.T) {
	c := newTestClient()

	q := url.Values{}
	q.Set("vnp_TxnRef", "inv-1")
	q.Set("vnp_ResponseCode", "00")
	assert.False(t, c.Verify(q))
}

func TestVerify_WrongSecret(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	signer := paygate.NewClient("TESTCODE", "other-secret", "https://pay.example.com/vpcpay.html", "https://api.example.com/vnpay-return")
	raw := signer.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	c := newTestClient()
	assert.False(t, c.Verify(parsed.Query()))
}

// 大文字の署名も受け付ける（ゲートウェイ実装差の吸収）
func TestVerify_UppercaseHash(t *testing.T) {
	c := newTestClient()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	raw := c.BuildPayURL("inv-1", 35250, "Thanh toan hoa don inv-1", "192.0.2.1", at)
	parsed, err := url.Parse(raw)
	assert.NoError(t, err)

	q := parsed.Query()
	q.Set("vnp_SecureHash", strings.ToUpper(q.Get("vnp_SecureHash")))
	assert.True(t, c.Verify(q))
}
