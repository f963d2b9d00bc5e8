package apex

import "context"

// ZKOrder is the order payload the Omni zk signature covers.
type ZKOrder struct {
	AccountID    string
	SlotID       string
	Nonce        string
	PairID       string
	Size         string
	Price        string
	Direction    string
	MakerFeeRate string
	TakerFeeRate string
}

// OrderSigner produces the zk signature attached to new orders. It typically
// wraps the account's Omni seeds.
type OrderSigner interface {
	SignOrder(ctx context.Context, order ZKOrder) (string, error)
}

// OrderSignerFunc adapts a function to OrderSigner.
type OrderSignerFunc func(ctx context.Context, order ZKOrder) (string, error)

// SignOrder calls f.
func (f OrderSignerFunc) SignOrder(ctx context.Context, order ZKOrder) (string, error) {
	return f(ctx, order)
}
