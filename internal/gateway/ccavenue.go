// Package gateway builds and parses the CCAvenue hosted-payment wire
// format.  The format is a compatibility contract: key=value pairs
// joined by "&" with percent-encoded values, encrypted with AES-128-CBC
// where the key is the MD5 digest of the configured working key and the
// IV is sixteen zero bytes, ciphertext hex-encoded.
package gateway

import (
    "bytes"
    "crypto/aes"
    "crypto/cipher"
    "crypto/md5"
    "encoding/hex"
    "errors"
    "fmt"
    "net/url"
    "strings"
)

// ErrNotConfigured is returned when a required merchant credential is
// missing.  This is an operator problem, not retryable.
var ErrNotConfigured = errors.New("payment gateway not configured")

// Gateway holds the merchant credentials and endpoints for CCAvenue.
type Gateway struct {
    MerchantID  string
    WorkingKey  string
    AccessCode  string
    BaseURL     string
    RedirectURL string
    CancelURL   string
}

// Configured reports whether the gateway can build payment requests:
// credentials plus both callback URLs must be present.
func (g *Gateway) Configured() bool {
    return g.MerchantID != "" && g.WorkingKey != "" && g.RedirectURL != "" && g.CancelURL != ""
}

// MerchantParams are the per-order fields of a payment request.
type MerchantParams struct {
    OrderID      string
    Amount       string // decimal rupee string with two fraction digits
    BillingName  string // optional
    BillingEmail string // optional
}

// BuildMerchantData serializes the merchant payload in the field order
// the gateway expects.  Order matters: the gateway parses positionally
// in places, so this must stay byte-compatible.
func (g *Gateway) BuildMerchantData(p MerchantParams) (string, error) {
    if g.MerchantID == "" {
        return "", ErrNotConfigured
    }
    fields := [][2]string{
        {"merchant_id", g.MerchantID},
        {"order_id", p.OrderID},
        {"currency", "INR"},
        {"amount", p.Amount},
        {"redirect_url", g.RedirectURL},
        {"cancel_url", g.CancelURL},
        {"language", "EN"},
    }
    if p.BillingName != "" {
        fields = append(fields, [2]string{"billing_name", p.BillingName})
    }
    if p.BillingEmail != "" {
        fields = append(fields, [2]string{"billing_email", p.BillingEmail})
    }
    pairs := make([]string, len(fields))
    for i, f := range fields {
        pairs[i] = f[0] + "=" + escapeComponent(f[1])
    }
    return strings.Join(pairs, "&"), nil
}

// Encrypt encrypts a merchant payload: AES-128-CBC, key=MD5(working
// key), zero IV, PKCS#7 padding, hex output.
func (g *Gateway) Encrypt(plain string) (string, error) {
    block, err := g.cipherBlock()
    if err != nil {
        return "", err
    }
    padded := pkcs7Pad([]byte(plain), aes.BlockSize)
    out := make([]byte, len(padded))
    iv := make([]byte, aes.BlockSize)
    cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
    return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt exactly.
func (g *Gateway) Decrypt(encryptedHex string) (string, error) {
    block, err := g.cipherBlock()
    if err != nil {
        return "", err
    }
    data, err := hex.DecodeString(encryptedHex)
    if err != nil {
        return "", fmt.Errorf("malformed ciphertext: %w", err)
    }
    if len(data) == 0 || len(data)%aes.BlockSize != 0 {
        return "", errors.New("malformed ciphertext: bad length")
    }
    out := make([]byte, len(data))
    iv := make([]byte, aes.BlockSize)
    cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
    unpadded, err := pkcs7Unpad(out, aes.BlockSize)
    if err != nil {
        return "", err
    }
    return string(unpadded), nil
}

// ParseResponse splits a decrypted gateway response into its fields.
// Malformed pairs are skipped rather than failing the whole parse.
func ParseResponse(data string) map[string]string {
    out := make(map[string]string)
    for _, pair := range strings.Split(data, "&") {
        idx := strings.Index(pair, "=")
        if idx < 0 {
            continue
        }
        key := pair[:idx]
        value, err := url.PathUnescape(pair[idx+1:])
        if err != nil {
            continue
        }
        out[key] = value
    }
    return out
}

// FormatPaise renders a paise amount as the decimal rupee string the
// gateway requires, always with two fraction digits.
func FormatPaise(paise int64) string {
    return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

func (g *Gateway) cipherBlock() (cipher.Block, error) {
    if g.WorkingKey == "" {
        return nil, ErrNotConfigured
    }
    key := md5.Sum([]byte(g.WorkingKey))
    return aes.NewCipher(key[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
    n := blockSize - len(data)%blockSize
    return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
    if len(data) == 0 {
        return nil, errors.New("malformed plaintext: empty")
    }
    n := int(data[len(data)-1])
    if n == 0 || n > blockSize || n > len(data) {
        return nil, errors.New("malformed plaintext: bad padding")
    }
    for _, b := range data[len(data)-n:] {
        if int(b) != n {
            return nil, errors.New("malformed plaintext: bad padding")
        }
    }
    return data[:len(data)-n], nil
}

// escapeComponent percent-encodes a value the way JS encodeURIComponent
// does: unreserved characters A-Z a-z 0-9 - _ . ! ~ * ' ( ) pass
// through, everything else (including space) becomes %XX.  The gateway
// decodes with the same alphabet, so url.QueryEscape's "+" for space
// would be misread.
func escapeComponent(s string) string {
    var b strings.Builder
    for i := 0; i < len(s); i++ {
        c := s[i]
        if isUnreservedComponent(c) {
            b.WriteByte(c)
            continue
        }
        b.WriteString(fmt.Sprintf("%%%02X", c))
    }
    return b.String()
}

func isUnreservedComponent(c byte) bool {
    switch {
    case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
        return true
    }
    switch c {
    case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
        return true
    }
    return false
}
