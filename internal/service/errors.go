package service

import "errors"

// 业务错误哨兵，API层通过 errors.Is 映射为对应的HTTP状态码
var (
	ErrInvalidQRCodeID = errors.New("qrCodeId is required")          // 400
	ErrInvalidURL      = errors.New("Invalid URL format")            // 400
	ErrQRNotFound      = errors.New("QR not found")                  // 404
	ErrQRExists        = errors.New("QR Code already exists")        // 409
	ErrNoRows          = errors.New("no data provided")              // 400
	ErrTooManyRows     = errors.New("too many rows")                 // 400
	ErrNoValidRows     = errors.New("no valid QR entries found")     // 400，ImportResult里带有逐行错误
	ErrInvalidCount    = errors.New("count must be greater than zero") // 400
)
