package bitvavo

import "github.com/coachpo/meltica-rest/internal/exchange"

// HandleErrors detects {"errorCode":205,"error":"orderId parameter is invalid."}.
func (a *adapter) HandleErrors(status int, body []byte, payload any) error {
	obj := exchange.AsObject(payload)
	if obj == nil {
		return nil
	}
	code := exchange.String(obj, "errorCode")
	message := exchange.String(obj, "error")
	if code == nil && message == nil {
		return nil
	}
	sig := exchange.Signal{
		Code:   exchange.Deref(code),
		Status: status,
		Body:   string(body),
	}
	if message != nil {
		sig.Messages = []string{*message}
	}
	return a.classifier.Classify(sig)
}
