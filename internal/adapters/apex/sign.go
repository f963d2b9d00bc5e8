package apex

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// adapter implements exchange.Adapter for the Apex REST API.
type adapter struct {
	desc       *exchange.Descriptor
	baseURL    string
	basePath   string
	classifier *exchange.Classifier
}

func newAdapter(desc *exchange.Descriptor, baseURL string) (*adapter, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apex: base url: %w", err)
	}
	return &adapter{
		desc:       desc,
		baseURL:    baseURL,
		basePath:   strings.TrimSuffix(u.Path, "/"),
		classifier: exchange.NewClassifier(desc.ID, desc.Errors, desc.HTTPErrors),
	}, nil
}

func (a *adapter) Describe() *exchange.Descriptor { return a.desc }

// Sign builds an Apex request. Query strings and POST bodies both use the
// sorted, unescaped k=v encoding.
//
// Private requests add APEX-SIGNATURE = base64(HMAC-SHA256(
// timestamp + METHOD + /api/path[?query] + body)) keyed by the base64 of the
// secret.
func (a *adapter) Sign(ep exchange.Endpoint, params exchange.Params, creds exchange.Credentials, now time.Time) (exchange.Request, error) {
	method := strings.ToUpper(ep.Method)
	target := a.baseURL + "/" + ep.Path
	signPath := a.basePath + "/" + ep.Path
	body := ""

	if method != http.MethodPost {
		if len(params) > 0 {
			query := params.RawEncode()
			signPath += "?" + query
			target += "?" + query
		}
	} else {
		body = params.RawEncode()
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/x-www-form-urlencoded")

	if ep.Scope == exchange.Private {
		timestamp := strconv.FormatInt(now.UnixMilli(), 10)
		message := timestamp + method + signPath + body
		key := base64.StdEncoding.EncodeToString([]byte(creds.Secret))
		headers.Set("APEX-SIGNATURE", exchange.HMACBase64([]byte(message), []byte(key)))
		headers.Set("APEX-API-KEY", creds.APIKey)
		headers.Set("APEX-TIMESTAMP", timestamp)
		headers.Set("APEX-PASSPHRASE", creds.Passphrase)
	}
	return exchange.Request{Method: method, URL: target, Headers: headers, Body: body}, nil
}
