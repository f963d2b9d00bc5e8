package bitvavo

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

type adapter struct {
	desc         *exchange.Descriptor
	baseURL      string
	accessWindow string
	classifier   *exchange.Classifier
}

func newAdapter(desc *exchange.Descriptor, baseURL string, accessWindow int) *adapter {
	return &adapter{
		desc:         desc,
		baseURL:      strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		accessWindow: strconv.Itoa(accessWindow),
		classifier:   exchange.NewClassifier(desc.ID, desc.Errors, desc.HTTPErrors),
	}
}

func (a *adapter) Describe() *exchange.Descriptor { return a.desc }

// Sign builds a v2 request. GET and DELETE carry the params in the query,
// POST and PUT as a JSON body. The signature is the hex HMAC-SHA256 of
// timestamp + METHOD + "/v2/path[?query]" + body.
func (a *adapter) Sign(ep exchange.Endpoint, params exchange.Params, creds exchange.Credentials, now time.Time) (exchange.Request, error) {
	method := strings.ToUpper(ep.Method)
	path, query := exchange.ImplodeParams(ep.Path, params)
	if strings.Contains(path, "{") {
		return exchange.Request{}, fmt.Errorf("%s: unresolved path parameter in %q", exchangeID, ep.Path)
	}
	signPath := "/" + apiVersion + "/" + path
	queryInURL := method == http.MethodGet || method == http.MethodDelete
	if queryInURL && len(query) > 0 {
		signPath += "?" + query.Encode()
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	body := ""
	if !queryInURL && len(query) > 0 {
		encoded, err := query.JSON()
		if err != nil {
			return exchange.Request{}, fmt.Errorf("%s: encode body: %w", exchangeID, err)
		}
		body = encoded
	}

	if ep.Scope == exchange.Private {
		timestamp := strconv.FormatInt(now.UnixMilli(), 10)
		headers.Set("BITVAVO-ACCESS-KEY", creds.APIKey)
		headers.Set("BITVAVO-ACCESS-SIGNATURE", exchange.HMACHex([]byte(timestamp+method+signPath+body), []byte(creds.Secret)))
		headers.Set("BITVAVO-ACCESS-TIMESTAMP", timestamp)
		headers.Set("BITVAVO-ACCESS-WINDOW", a.accessWindow)
		if !queryInURL {
			headers.Set("Content-Type", "application/json")
		}
	}
	return exchange.Request{Method: method, URL: a.baseURL + signPath, Headers: headers, Body: body}, nil
}
