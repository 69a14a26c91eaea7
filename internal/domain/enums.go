package domain

// OrderStatus represents the fulfilment status of an order, set by the admin
type OrderStatus string

const (
	// PENDING - Order placed, payment claim not yet verified
	OrderStatusPending OrderStatus = "pending"
	// CONFIRMED - Payment verified by the admin
	OrderStatusConfirmed OrderStatus = "confirmed"
	// SHIPPED - Handed to the courier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - Received by the customer
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every status in display order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// MediaType is the kind of gallery media
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeGIF   MediaType = "gif"
	MediaTypeImage MediaType = "image"
)

// IsValid checks if the media type is valid
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeVideo, MediaTypeGIF, MediaTypeImage:
		return true
	default:
		return false
	}
}

// Object storage buckets
const (
	BucketProductImages = "product-images"
	BucketMediaVideos   = "media-videos"
	BucketMediaImages   = "media-images"
	BucketMediaPosters  = "media-posters"
)

// IsKnownBucket reports whether uploads may target the bucket
func IsKnownBucket(bucket string) bool {
	switch bucket {
	case BucketProductImages, BucketMediaVideos, BucketMediaImages, BucketMediaPosters:
		return true
	default:
		return false
	}
}

// MediaBucket returns the bucket holding the main file for a media type
func MediaBucket(t MediaType) string {
	if t == MediaTypeVideo {
		return BucketMediaVideos
	}
	return BucketMediaImages
}
