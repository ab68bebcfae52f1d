// Package store keeps a signed-in user's cart and wishlist in step with the
// persisted rows. Every successful write is followed by a full reload, and a
// failed write leaves the cached items untouched.
package store

// State is the lifecycle state of a list.
type State int

const (
	// Empty means no user is signed in.
	Empty State = iota
	// Loading means a full read is in flight.
	Loading
	// Ready means the cache reflects the last successful read.
	Ready
	// Mutating means a write is in flight.
	Mutating
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind names a list.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// messages holds the user-facing texts for one kind of list.
type messages struct {
	signInAdd, signInRemove, signInUpdate, signInClear string

	added, addFailed      string
	removed, removeFailed string
	updated, updateFailed string
	cleared, clearFailed  string
	loadFailed            string
	alreadyPresent        string
}

var cartMessages = messages{
	signInAdd:    "Please sign in to add items to your cart",
	signInRemove: "Please sign in to remove items from your cart",
	signInUpdate: "Please sign in to update your cart",
	signInClear:  "Please sign in to clear your cart",
	added:        "Added to cart",
	addFailed:    "Failed to add item to cart",
	removed:      "Removed from cart",
	removeFailed: "Failed to remove item from cart",
	updated:      "Cart updated",
	updateFailed: "Failed to update cart",
	cleared:      "Cart cleared",
	clearFailed:  "Failed to clear cart",
	loadFailed:   "Failed to load cart items",
}

var wishlistMessages = messages{
	signInAdd:      "Please sign in to add items to your wishlist",
	signInRemove:   "Please sign in to remove items from your wishlist",
	signInUpdate:   "Please sign in to update your wishlist",
	signInClear:    "Please sign in to clear your wishlist",
	added:          "Added to wishlist",
	addFailed:      "Failed to add item to wishlist",
	removed:        "Removed from wishlist",
	removeFailed:   "Failed to remove item from wishlist",
	cleared:        "Wishlist cleared",
	clearFailed:    "Failed to clear wishlist",
	loadFailed:     "Failed to load wishlist items",
	alreadyPresent: "Item is already in your wishlist",
}
