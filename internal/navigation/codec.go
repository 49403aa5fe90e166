package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRouteDecode is returned for paths that match no route template.
var ErrRouteDecode = errors.New("route decode error")

const (
	paramImageURL = "imageUrl"
	paramName     = "name"
)

var patterns = map[Kind]string{
	KindProductList:        "product_list",
	KindProductDetails:     "product_details/{productId}",
	KindNotifications:      "notifications",
	KindNotificationDetail: "notification_detail/{notificationId}",
	KindWishlist:           "wishlist",
	KindAIAssistant:        "ai_assistant/{productId}/{productName}",
}

// Pattern returns the path template for kind, or "" for an unknown kind.
func Pattern(kind Kind) string {
	return patterns[kind]
}

// Encode renders r as a deep-link path. Every parameter is a single
// percent-encoded segment, so "/" inside a value becomes "%2F". The optional
// ProductDetails fields travel as query parameters.
func Encode(r Route) string {
	switch r := r.(type) {
	case ProductDetails:
		path := join(KindProductDetails, r.ProductID)
		q := url.Values{}
		if r.ImageURL != "" {
			q.Set(paramImageURL, r.ImageURL)
		}
		if r.Name != "" {
			q.Set(paramName, r.Name)
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		return path
	case NotificationDetail:
		return join(KindNotificationDetail, r.NotificationID)
	case AIAssistant:
		return join(KindAIAssistant, r.ProductID, r.ProductName)
	case nil:
		return string(KindProductList)
	default:
		return string(r.Kind())
	}
}

func join(kind Kind, params ...string) string {
	var b strings.Builder
	b.WriteString(string(kind))
	for _, p := range params {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// Decode parses a path produced by Encode. A leading "/" is ignored.
func Decode(path string) (Route, error) {
	raw, query, _ := strings.Cut(strings.TrimPrefix(path, "/"), "?")
	if raw == "" {
		return nil, decodeError(path, "empty path")
	}
	segments := strings.Split(raw, "/")
	params := make([]string, len(segments)-1)
	for i, seg := range segments[1:] {
		p, err := url.PathUnescape(seg)
		if err != nil {
			return nil, decodeError(path, err.Error())
		}
		if p == "" {
			return nil, decodeError(path, "empty segment")
		}
		params[i] = p
	}

	kind := Kind(segments[0])
	pattern := Pattern(kind)
	if pattern == "" {
		return nil, decodeError(path, "unknown route "+segments[0])
	}
	want := strings.Count(pattern, "/")
	if len(params) != want {
		return nil, decodeError(path, fmt.Sprintf("%s takes %d parameters, got %d", kind, want, len(params)))
	}

	switch kind {
	case KindProductDetails:
		r := ProductDetails{ProductID: params[0]}
		if query != "" {
			q, err := url.ParseQuery(query)
			if err != nil {
				return nil, decodeError(path, err.Error())
			}
			r.ImageURL = q.Get(paramImageURL)
			r.Name = q.Get(paramName)
		}
		return r, nil
	case KindNotificationDetail:
		return NotificationDetail{NotificationID: params[0]}, nil
	case KindAIAssistant:
		return AIAssistant{ProductID: params[0], ProductName: params[1]}, nil
	case KindNotifications:
		return Notifications{}, nil
	case KindWishlist:
		return Wishlist{}, nil
	default:
		return ProductList{}, nil
	}
}

// LegacyTemplate renders r with plain substitution into its template, without
// escaping and without the optional ProductDetails fields. This is the older
// string-template format; its output is not guaranteed to Decode.
func LegacyTemplate(r Route) string {
	if r == nil {
		r = Root()
	}
	var pairs []string
	switch r := r.(type) {
	case ProductDetails:
		pairs = []string{"{productId}", r.ProductID}
	case NotificationDetail:
		pairs = []string{"{notificationId}", r.NotificationID}
	case AIAssistant:
		pairs = []string{"{productId}", r.ProductID, "{productName}", r.ProductName}
	}
	if len(pairs) == 0 {
		return Pattern(r.Kind())
	}
	return strings.NewReplacer(pairs...).Replace(Pattern(r.Kind()))
}

func decodeError(path, detail string) error {
	return fmt.Errorf("%w: %q: %s", ErrRouteDecode, path, detail)
}
