package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math"
	"strings"

	"github.com/coachpo/meltica-rest/errs"
)

// Scope separates unauthenticated from signed endpoints.
type Scope string

const (
	// Public endpoints need no credentials.
	Public Scope = "public"
	// Private endpoints are signed with the credential set.
	Private Scope = "private"
)

// Endpoint declares one REST route of an exchange.
type Endpoint struct {
	Scope  Scope
	Method string
	Path   string
	// Cost is the rate limiter weight; zero counts as one.
	Cost float64
	// NoMarketCost replaces Cost when the request carries no "market" param.
	NoMarketCost float64
}

// Weight returns the limiter tokens the call consumes.
func (e Endpoint) Weight(params Params) int {
	cost := e.Cost
	if e.NoMarketCost > 0 && !params.Has("market") {
		cost = e.NoMarketCost
	}
	if cost <= 0 {
		return 1
	}
	return int(math.Ceil(cost))
}

// HMACHex signs message with key using HMAC-SHA256, hex encoded.
func HMACHex(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACBase64 signs message with key using HMAC-SHA256, base64 encoded.
func HMACBase64(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Requirements declares which credentials private calls need.
type Requirements struct {
	APIKey        bool
	Secret        bool
	Passphrase    bool
	WalletAddress bool
	PrivateKey    bool
}

// Check fails with an AuthenticationError naming the first missing credential.
func (c Credentials) Check(exchangeID string, req Requirements) error {
	missing := ""
	switch {
	case req.APIKey && strings.TrimSpace(c.APIKey) == "":
		missing = "apiKey"
	case req.Secret && strings.TrimSpace(c.Secret) == "":
		missing = "secret"
	case req.Passphrase && strings.TrimSpace(c.Passphrase) == "":
		missing = "passphrase"
	case req.WalletAddress && strings.TrimSpace(c.WalletAddress) == "":
		missing = "walletAddress"
	case req.PrivateKey && strings.TrimSpace(c.PrivateKey) == "":
		missing = "privateKey"
	}
	if missing == "" {
		return nil
	}
	return errs.Newf(exchangeID, errs.ClassAuthentication, "requires \""+missing+"\" credential")
}
