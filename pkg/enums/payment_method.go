package enums

import "fmt"

// PaymentMethod is the stored value of the orders.payment_method text column.
type PaymentMethod string

const (
	PaymentMethodAlipay         PaymentMethod = "alipay"
	PaymentMethodWeChatPay      PaymentMethod = "wechat_pay"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodOther          PaymentMethod = "other"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodAlipay,
	PaymentMethodWeChatPay,
	PaymentMethodCashOnDelivery,
	PaymentMethodBankTransfer,
	PaymentMethodOther,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
