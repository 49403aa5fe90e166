// Package navigation models the app's screens as typed routes, keeps the
// back stack, and converts routes to and from deep-link paths.
package navigation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names a route variant. It is also the first path segment.
type Kind string

const (
	KindProductList        Kind = "product_list"
	KindProductDetails     Kind = "product_details"
	KindNotifications      Kind = "notifications"
	KindNotificationDetail Kind = "notification_detail"
	KindWishlist           Kind = "wishlist"
	KindAIAssistant        Kind = "ai_assistant"
)

// Kinds lists every variant.
var Kinds = []Kind{
	KindProductList,
	KindProductDetails,
	KindNotifications,
	KindNotificationDetail,
	KindWishlist,
	KindAIAssistant,
}

// ErrInvalidRoute is returned when a route is missing an identifying parameter.
var ErrInvalidRoute = errors.New("invalid route")

// Route is one screen and its parameters. The set of implementations is
// closed; values are comparable with ==.
type Route interface {
	Kind() Kind
	Validate() error
	isRoute()
}

type ProductList struct{}

type ProductDetails struct {
	ProductID string `json:"productId"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Name      string `json:"name,omitempty"`
}

type Notifications struct{}

type NotificationDetail struct {
	NotificationID string `json:"notificationId"`
}

type Wishlist struct{}

type AIAssistant struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

func (ProductList) Kind() Kind        { return KindProductList }
func (ProductDetails) Kind() Kind     { return KindProductDetails }
func (Notifications) Kind() Kind      { return KindNotifications }
func (NotificationDetail) Kind() Kind { return KindNotificationDetail }
func (Wishlist) Kind() Kind           { return KindWishlist }
func (AIAssistant) Kind() Kind        { return KindAIAssistant }

func (ProductList) isRoute()        {}
func (ProductDetails) isRoute()     {}
func (Notifications) isRoute()      {}
func (NotificationDetail) isRoute() {}
func (Wishlist) isRoute()           {}
func (AIAssistant) isRoute()        {}

func (ProductList) Validate() error   { return nil }
func (Notifications) Validate() error { return nil }
func (Wishlist) Validate() error      { return nil }

func (r ProductDetails) Validate() error {
	return required(r, "productId", r.ProductID)
}

func (r NotificationDetail) Validate() error {
	return required(r, "notificationId", r.NotificationID)
}

func (r AIAssistant) Validate() error {
	if err := required(r, "productId", r.ProductID); err != nil {
		return err
	}
	return required(r, "productName", r.ProductName)
}

func required(r Route, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidRoute, r.Kind(), name)
	}
	return nil
}

// Root is the route every stack starts from.
func Root() Route {
	return ProductList{}
}

// envelope is the JSON form of a route: {"kind": "...", "params": {...}}.
type envelope struct {
	Kind   Kind            `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// MarshalRoute encodes r as a tagged JSON object.
func MarshalRoute(r Route) ([]byte, error) {
	env, err := toEnvelope(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalRoute decodes a tagged JSON object and validates the result.
func UnmarshalRoute(data []byte) (Route, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoute, err)
	}
	return fromEnvelope(env)
}

func toEnvelope(r Route) (envelope, error) {
	if r == nil {
		return envelope{}, fmt.Errorf("%w: nil route", ErrInvalidRoute)
	}
	env := envelope{Kind: r.Kind()}
	switch r.(type) {
	case ProductList, Notifications, Wishlist:
		return env, nil
	}
	params, err := json.Marshal(r)
	if err != nil {
		return envelope{}, err
	}
	env.Params = params
	return env, nil
}

func fromEnvelope(env envelope) (Route, error) {
	var r Route
	var err error
	switch env.Kind {
	case KindProductList:
		r = ProductList{}
	case KindNotifications:
		r = Notifications{}
	case KindWishlist:
		r = Wishlist{}
	case KindProductDetails:
		var p ProductDetails
		err = unmarshalParams(env.Params, &p)
		r = p
	case KindNotificationDetail:
		var p NotificationDetail
		err = unmarshalParams(env.Params, &p)
		r = p
	case KindAIAssistant:
		var p AIAssistant
		err = unmarshalParams(env.Params, &p)
		r = p
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRoute, env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s params: %w", ErrInvalidRoute, env.Kind, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func unmarshalParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
