package bitstamp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

const formContentType = "application/x-www-form-urlencoded"

// emptyBody replaces empty POST bodies, which the venue rejects with API0020.
const emptyBody = "foo=bar"

type adapter struct {
	desc       *exchange.Descriptor
	baseURL    string
	nonce      func() string
	classifier *exchange.Classifier
}

func newAdapter(desc *exchange.Descriptor, baseURL string, nonce func() string) *adapter {
	if nonce == nil {
		nonce = uuid.NewString
	}
	return &adapter{
		desc:       desc,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		nonce:      nonce,
		classifier: exchange.NewClassifier(desc.ID, desc.Errors, desc.HTTPErrors),
	}
}

func (a *adapter) Describe() *exchange.Descriptor { return a.desc }

// Sign builds a v2 request. Private calls carry the X-Auth header family;
// X-Auth-Signature is the lowercase hex HMAC-SHA256 of
//
//	"BITSTAMP <key>" + METHOD + url without scheme + content type +
//	nonce + timestamp + "v2" + body
func (a *adapter) Sign(ep exchange.Endpoint, params exchange.Params, creds exchange.Credentials, now time.Time) (exchange.Request, error) {
	method := strings.ToUpper(ep.Method)
	path, query := exchange.ImplodeParams(ep.Path, params)
	if strings.Contains(path, "{") {
		return exchange.Request{}, fmt.Errorf("%s: unresolved path parameter in %q", exchangeID, ep.Path)
	}
	target := a.baseURL + "/" + apiVersion + "/" + path

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	if ep.Scope == exchange.Public {
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
		return exchange.Request{Method: method, URL: target, Headers: headers}, nil
	}

	xAuth := "BITSTAMP " + creds.APIKey
	nonce := a.nonce()
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	body := ""
	contentType := ""
	if method == http.MethodPost {
		body = emptyBody
		if len(query) > 0 {
			body = query.Encode()
		}
		contentType = formContentType
		headers.Set("Content-Type", contentType)
	} else if len(query) > 0 {
		target += "?" + query.Encode()
	}

	auth := xAuth + method + strings.TrimPrefix(target, "https://") + contentType + nonce + timestamp + apiVersion + body
	headers.Set("X-Auth", xAuth)
	headers.Set("X-Auth-Nonce", nonce)
	headers.Set("X-Auth-Timestamp", timestamp)
	headers.Set("X-Auth-Version", apiVersion)
	headers.Set("X-Auth-Signature", exchange.HMACHex([]byte(auth), []byte(creds.Secret)))
	return exchange.Request{Method: method, URL: target, Headers: headers, Body: body}, nil
}
