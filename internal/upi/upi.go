// Package upi はUPIディープリンクとそのQRコードを組み立てる。
// 状態を持たないので、PENDINGの注文を表示するたびに再生成してよい。
package upi

import (
	"encoding/base64"
	"errors"
	"net/url"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	currencyCode = "INR"
	qrSizePixels = 300
)

var paiseInRupee = decimal.NewFromInt(100)

type Builder struct {
	VPA       string // 受取先のUPIアドレス（payee@bank）
	PayeeName string
}

func NewBuilder(vpa, payeeName string) *Builder {
	return &Builder{VPA: vpa, PayeeName: payeeName}
}

type PaymentRequest struct {
	UpiLink     string `json:"upi_link"`
	QRCode      string `json:"qr_code"` // data:image/png;base64,...
	Amount      string `json:"amount"`  // 小数2桁固定
	OrderNumber string `json:"order_number"`
}

// Build は金額（paise）と注文番号から支払いリクエストを作る。
func (b *Builder) Build(amountPaise int64, orderNumber string) (PaymentRequest, error) {
	if b.VPA == "" {
		return PaymentRequest{}, errors.New("upi: vpa is not configured")
	}
	if amountPaise <= 0 {
		return PaymentRequest{}, errors.New("upi: amount must be positive")
	}
	if orderNumber == "" {
		return PaymentRequest{}, errors.New("upi: order number is required")
	}

	amount := decimal.NewFromInt(amountPaise).Div(paiseInRupee).StringFixed(2)

	v := url.Values{}
	v.Set("pa", b.VPA)
	v.Set("pn", b.PayeeName)
	v.Set("am", amount)
	v.Set("cu", currencyCode)
	v.Set("tn", "Order: "+orderNumber)
	v.Set("tr", orderNumber)

	link := "upi://pay?" + v.Encode()

	png, err := qrcode.Encode(link, qrcode.Medium, qrSizePixels)
	if err != nil {
		return PaymentRequest{}, err
	}

	return PaymentRequest{
		UpiLink:     link,
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Amount:      amount,
		OrderNumber: orderNumber,
	}, nil
}
