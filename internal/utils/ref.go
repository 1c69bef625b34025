package utils

import (
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
)

// NewID returns a random identifier for entity primary keys.
func NewID() string {
    return uuid.NewString()
}

// NewOrderID returns a merchant order identifier.  The "SB_" prefix
// marks our orders in gateway dashboards; the uuid body keeps them
// unique across instances.
func NewOrderID() string {
    return "SB_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewPNR returns a passenger booking reference: "SB" followed by the
// current unix milliseconds in upper-case base36.  Short enough to read
// over the phone, monotonic enough to never repeat in practice.
func NewPNR() string {
    return "SB" + strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}
