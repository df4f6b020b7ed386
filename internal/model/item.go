package model

import "fmt"

// Acquisition statuses.
const (
	StatusArrived   = "arrived"     // in hand
	StatusPreorder  = "preorder"    // paid for, not yet shipped
	StatusNotOnHand = "not_on_hand" // tracked but not yet acquired
	StatusForSale   = "for_sale"    // listed for resale
)

// Physical condition values.
const (
	ConditionUnopened  = "unopened"  // factory sealed
	ConditionInspected = "inspected" // opened for inspection only
	ConditionDisplayed = "displayed" // opened and displayed
)

// LegacyConditionValues maps the display strings stored by the first release
// to the current condition tokens. Consumed only by the condition-values data
// migration.
var LegacyConditionValues = map[string]string{
	"全新未拆": ConditionUnopened,
	"僅拆檢":  ConditionInspected,
	"拆擺過":  ConditionDisplayed,
}

// Payment statuses.
const (
	PaymentFull    = "paid_full" // paid in full
	PaymentDeposit = "deposit"   // deposit paid, remainder outstanding
	PaymentCOD     = "cod"       // cash on delivery
	PaymentOther   = "other"
)

// Source types.
const (
	SourceProxy = "proxy" // bought through a purchasing agent
	SourceSelf  = "self"  // bought directly
)

// GoodsItem is one purchased or tracked merchandise unit.
type GoodsItem struct {
	ID           string `json:"id"`
	WorkID       string `json:"workId"`
	CategoryID   string `json:"categoryId"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName,omitempty"`
	Condition    string `json:"condition,omitempty"`

	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`

	// ImageID references a blob in the image store. Image holds the inline
	// base64 payload written by pre-v2 releases and is cleared by the
	// inline-images migration.
	ImageID string `json:"imageId,omitempty"`
	Image   string `json:"image,omitempty"`

	SourceType       string `json:"sourceType"`
	ProxyID          string `json:"proxyId,omitempty"`
	PurchaseLocation string `json:"purchaseLocation,omitempty"`

	Status        string   `json:"status"`
	PaymentStatus string   `json:"paymentStatus"`
	DepositAmount *float64 `json:"depositAmount,omitempty"`

	// PurchaseDate is a unix millisecond timestamp, used for monthly
	// spending reports. Optional.
	PurchaseDate *int64 `json:"purchaseDate,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	Order     *int  `json:"order,omitempty"`
}

// Key returns the document key.
func (i GoodsItem) Key() string { return i.ID }

// Total is the item's total price (unit price times quantity).
func (i *GoodsItem) Total() float64 {
	return i.Price * float64(i.Quantity)
}

// Outstanding is the unpaid remainder for deposit-paid items, zero otherwise.
func (i *GoodsItem) Outstanding() float64 {
	if i.PaymentStatus == PaymentDeposit && i.DepositAmount != nil {
		return i.Total() - *i.DepositAmount
	}
	return 0
}

var validStatuses = map[string]bool{
	StatusArrived:   true,
	StatusPreorder:  true,
	StatusNotOnHand: true,
	StatusForSale:   true,
}

var validConditions = map[string]bool{
	ConditionUnopened:  true,
	ConditionInspected: true,
	ConditionDisplayed: true,
}

var validPayments = map[string]bool{
	PaymentFull:    true,
	PaymentDeposit: true,
	PaymentCOD:     true,
	PaymentOther:   true,
}

// Validate checks field constraints that must hold before an item is
// persisted. Referential constraints (workId/categoryId existence) are
// checked by the store, which can see the other collections.
func (i *GoodsItem) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if i.WorkID == "" {
		return fmt.Errorf("item workId is required")
	}
	if i.CategoryID == "" {
		return fmt.Errorf("item categoryId is required")
	}
	if i.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if i.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if !validStatuses[i.Status] {
		return fmt.Errorf("invalid status %q", i.Status)
	}
	if i.Condition != "" && !validConditions[i.Condition] {
		return fmt.Errorf("invalid condition %q", i.Condition)
	}
	if !validPayments[i.PaymentStatus] {
		return fmt.Errorf("invalid payment status %q", i.PaymentStatus)
	}

	switch i.SourceType {
	case SourceProxy:
		if i.ProxyID == "" {
			return fmt.Errorf("proxy-sourced item requires a proxyId")
		}
	case SourceSelf:
	default:
		return fmt.Errorf("invalid source type %q", i.SourceType)
	}

	if i.PaymentStatus == PaymentDeposit {
		if i.DepositAmount == nil {
			return fmt.Errorf("deposit amount is required when payment status is %q", PaymentDeposit)
		}
		if *i.DepositAmount <= 0 || *i.DepositAmount >= i.Total() {
			return fmt.Errorf("deposit amount must be above zero and below the total price")
		}
	}

	return nil
}
