package apex

import (
	"github.com/coachpo/meltica-rest/internal/exchange"
)

// HandleErrors detects the Apex error envelope: a non-zero "code" field.
//
//	{"code":3,"msg":"Order price must be greater than 0.","key":"ORDER_PRICE_MUST_GREETER_ZERO"}
//	{"code":400,"msg":"strconv.ParseInt: parsing \"x\": invalid syntax"}
func (a *adapter) HandleErrors(status int, body []byte, payload any) error {
	obj := exchange.AsObject(payload)
	if obj == nil {
		return nil
	}
	code := exchange.Int64(obj, "code")
	if code == nil || *code == 0 {
		return nil
	}
	messages := make([]string, 0, 2)
	for _, key := range []string{"key", "msg"} {
		if s := exchange.String(obj, key); s != nil {
			messages = append(messages, *s)
		}
	}
	return a.classifier.Classify(exchange.Signal{
		Code:     *exchange.String(obj, "code"),
		Messages: messages,
		Status:   status,
		Body:     string(body),
	})
}
