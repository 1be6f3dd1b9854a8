// Package cart is a placeholder for the shopping cart. It only tells the user
// that the feature is not there yet.
package cart

import (
	"fmt"

	"storefront/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

const ComingSoonMessage = "Cart is coming soon"

type Notifier interface {
	NotifyUser(message string, isError bool)
}

type Cart struct {
	notifier Notifier
}

func New(notifier Notifier) *Cart {
	return &Cart{notifier: notifier}
}

// AddToCart never fails. Items that are out of stock get an error notice,
// everything else the coming-soon notice.
func (c *Cart) AddToCart(item domain.Item) {
	if !item.InStock() {
		log.Debugf("Refusing to add out-of-stock item %d", item.ID)
		c.notifier.NotifyUser(fmt.Sprintf("%s is out of stock", item.Name), true)
		return
	}

	log.Debugf("Add to cart requested for item %d", item.ID)
	c.notifier.NotifyUser(ComingSoonMessage, false)
}
