// Package share hands contacts to the outside world: QR payloads, the
// system clipboard, and the configured browser, mail client and editor.
package share

import (
	"fmt"
	"time"

	"github.com/jcadam/vaultkey/pkg/contacts"
)

// QRCapacity is the byte capacity of the largest QR code (version 40,
// low error correction, byte mode).
const QRCapacity = 2953

// Payload is the text a QR code for one contact would carry.
type Payload struct {
	Data string
	Size int
}

// TooLarge reports whether the payload exceeds QRCapacity.
func (p Payload) TooLarge() bool {
	return p.Size > QRCapacity
}

// Warning returns a user-facing message when the payload will not fit in a
// QR code, or "".
func (p Payload) Warning() string {
	if !p.TooLarge() {
		return ""
	}
	return fmt.Sprintf("payload is %d bytes, above the %d byte QR limit; trim notes or custom fields", p.Size, QRCapacity)
}

// QRPayload builds the vCard a QR share carries. The photo is always left
// out; a zero now stamps the current time.
func QRPayload(c contacts.Contact, now time.Time) Payload {
	data := contacts.EncodeVCard(c, contacts.EncodeOptions{IncludePhoto: false, Now: now})
	return Payload{Data: data, Size: len(data)}
}
