// Package format derives human-facing booking references.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const prefix = "WP"

// Reference derives the customer-facing booking reference from the
// booking id and its creation time. The same inputs always produce the
// same reference.
func Reference(id snowflake.ID, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, createdAt.UTC().Year(), id.String())
}

// InvoiceNumber derives the invoice number from a booking reference.
func InvoiceNumber(reference string) string {
	return "INV-" + strings.TrimPrefix(reference, prefix+"-")
}
