// Package paygate はVNPay決済ゲートウェイとのリクエスト署名・検証を行う。
package paygate

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ゲートウェイが成功を示すレスポンスコード
const ResponseCodeSuccess = "00"

const (
	version   = "2.1.0"
	command   = "pay"
	currency  = "VND"
	locale    = "vn"
	orderType = "billpayment"
)

// vnp_CreateDate のフォーマット（YmdHis）
const createDateFormat = "20060102150405"

type Client struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
}

func NewClient(tmnCode string, hashSecret string, payURL string, returnURL string) *Client {
	return &Client{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		payURL:     payURL,
		returnURL:  returnURL,
	}
}

// BuildPayURL は署名付きのリダイレクトURLを組み立てる。
// パラメータをキー順に並べてURLエンコードした文字列をHMAC-SHA512で署名し、
// vnp_SecureHash として末尾に付ける。状態は一切変更しない純粋な変換。
func (c *Client) BuildPayURL(txnRef string, amount int64, orderInfo string, clientIP string, createdAt time.Time) string {
	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.tmnCode,
		"vnp_Amount":     strconv.FormatInt(amount*100, 10),
		"vnp_CreateDate": createdAt.Format(createDateFormat),
		"vnp_CurrCode":   currency,
		"vnp_IpAddr":     clientIP,
		"vnp_Locale":     locale,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  orderType,
		"vnp_ReturnUrl":  c.returnURL,
		"vnp_TxnRef":     txnRef,
	}

	canonical := canonicalize(params)
	secureHash := c.sign(canonical)

	return c.payURL + "?" + canonical + "&vnp_SecureHash=" + secureHash
}

// Verify はコールバックの署名を検証する。
// vnp_SecureHash / vnp_SecureHashType を除く vnp_ パラメータから
// 署名を再計算し、受信した署名と比較する。
func (c *Client) Verify(query url.Values) bool {
	received := query.Get("vnp_SecureHash")
	if received == "" {
		return false
	}

	params := make(map[string]string)
	for key := range query {
		if !strings.HasPrefix(key, "vnp_") {
			continue
		}
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params[key] = query.Get(key)
	}

	expected := c.sign(canonicalize(params))
	return hmac.Equal([]byte(strings.ToLower(received)), []byte(expected))
}

// キー順ソート＋URLエンコードで正規化した文字列を作る
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(parts, "&")
}

func (c *Client) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(c.hashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
