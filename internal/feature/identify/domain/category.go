package domain

import (
	"errors"
	"fmt"
)

// Category は利用者に提示する失敗の区分です。
type Category string

const (
	CategoryInvalidImage    Category = "invalid_image"
	CategoryInvalidRequest  Category = "invalid_request"
	CategoryUnauthorized    Category = "unauthorized"
	CategoryRateLimited     Category = "rate_limited"
	CategoryPayloadTooLarge Category = "payload_too_large"
	CategoryTimeout         Category = "timeout"
	CategoryConnection      Category = "connection"
	CategoryRemoteError     Category = "remote_error"
	CategoryInternal        Category = "internal"
)

// NoMatchesWarning は候補が0件だったときに表示する案内文です。
const NoMatchesWarning = "🤔 No species matches found. This could be due to image quality issues, " +
	"unusual plant species, or unclear plant parts. Try uploading clearer images or different plant parts."

// Categorize はエラーを区分に変換します。既知のどれにも当たらない場合はCategoryInternalです。
func Categorize(err error) Category {
	var normErr *NormalizationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrImageTooLarge), errors.Is(err, ErrTooManyPixels), errors.Is(err, ErrRequestTooLarge):
		return CategoryPayloadTooLarge
	case errors.As(err, &normErr), errors.Is(err, ErrDecode), errors.Is(err, ErrEncode):
		return CategoryInvalidImage
	case errors.Is(err, ErrNoImages), errors.Is(err, ErrInvalidOrgan):
		return CategoryInvalidRequest
	case errors.Is(err, ErrRemoteUnauthorized):
		return CategoryUnauthorized
	case errors.Is(err, ErrRemoteRateLimited):
		return CategoryRateLimited
	case errors.Is(err, ErrRemotePayloadTooLarge):
		return CategoryPayloadTooLarge
	case errors.Is(err, ErrRemoteTimeout):
		return CategoryTimeout
	case errors.Is(err, ErrRemoteConnection):
		return CategoryConnection
	case errors.Is(err, ErrRemoteOther):
		return CategoryRemoteError
	default:
		return CategoryInternal
	}
}

// UserMessage はエラーに対応する利用者向けメッセージを1つ返します。
func UserMessage(err error) string {
	var normErr *NormalizationError
	var statusErr *RemoteStatusError
	switch Categorize(err) {
	case CategoryInvalidImage:
		if errors.As(err, &normErr) {
			return fmt.Sprintf("Failed to process image file: %s", normErr.Filename)
		}
		return "Failed to process image file."
	case CategoryInvalidRequest:
		if errors.Is(err, ErrInvalidOrgan) {
			return "Unknown plant organ. Use one of: auto, leaf, flower, fruit, bark, habit, other."
		}
		return "No images uploaded."
	case CategoryUnauthorized:
		return "Invalid API key. Please check your PlantNet API key configuration."
	case CategoryRateLimited:
		return "API rate limit exceeded. Please wait a moment before trying again."
	case CategoryPayloadTooLarge:
		return payloadMessage(err)
	case CategoryTimeout:
		return "Request timeout. The API is taking too long to respond. Please try again."
	case CategoryConnection:
		return "Connection error. Please check your internet connection and try again."
	case CategoryRemoteError:
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("API Error %d: %s", statusErr.StatusCode, statusErr.Body)
		}
		return "API Error."
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

// payloadMessage はローカルの上限超過なら設定値を、Pl@ntNetの413なら元の文言を返します。
func payloadMessage(err error) string {
	var normErr *NormalizationError
	var limitErr *LimitError
	name := ""
	if errors.As(err, &normErr) {
		name = normErr.Filename
	}
	if !errors.As(err, &limitErr) {
		if name != "" {
			return fmt.Sprintf("Image file too large: %s.", name)
		}
		return "Image file too large. Please use smaller images (max 5MB)."
	}

	switch {
	case errors.Is(limitErr.Err, ErrTooManyPixels):
		return fmt.Sprintf("Image dimensions too large: %s. Please use images up to %s.", name, FormatPixels(limitErr.Limit))
	case errors.Is(limitErr.Err, ErrRequestTooLarge):
		return fmt.Sprintf("Upload too large. Please keep the total upload under %s.", FormatBytes(limitErr.Limit))
	default:
		return fmt.Sprintf("Image file too large: %s. Please use smaller images (max %s).", name, FormatBytes(limitErr.Limit))
	}
}

// FormatBytes はバイト数を "10MB" や "512KB" の形式にします。
func FormatBytes(n int64) string {
	const kb, mb = 1024, 1024 * 1024
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// FormatPixels は画素数を "50 megapixels" の形式にします。
func FormatPixels(n int64) string {
	if n >= 1_000_000 && n%1_000_000 == 0 {
		return fmt.Sprintf("%d megapixels", n/1_000_000)
	}
	return fmt.Sprintf("%d pixels", n)
}
